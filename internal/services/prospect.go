package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/metrics"
)

// ProspectStore is the data access needed by ProspectService.
type ProspectStore interface {
	companyGetter
	childLister
	ProspectPage(ctx context.Context, ids []uuid.UUID, search string, offset, limit int) ([]models.Company, int64, error)
	UpdateCompanyStatus(ctx context.Context, id uuid.UUID, status models.CompanyStatus) error
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CompaniesForProfile(ctx context.Context, profileID uuid.UUID) ([]models.Company, error)
	ProfilesForCompany(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.Profile, error)
	DeleteSessionsForProspect(ctx context.Context, prospectID uuid.UUID) error
	DeleteProposalsForProspect(ctx context.Context, prospectID uuid.UUID) error
	DeleteCompanyAssociations(ctx context.Context, companyID uuid.UUID) error
	DeleteProfiles(ctx context.Context, ids []uuid.UUID) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error
}

// Stages of a prospect deletion, in execution order.
const (
	StageStepperSessions = "stepper sessions"
	StageProposals       = "proposals"
	StageContacts        = "contacts"
	StageCompany         = "company"
)

type ProspectService struct {
	store  ProspectStore
	users  auth.UserManager
	events events.Publisher
	logger *slog.Logger
}

func NewProspectService(st ProspectStore, users auth.UserManager, pub events.Publisher, logger *slog.Logger) *ProspectService {
	return &ProspectService{store: st, users: users, events: pub, logger: logger}
}

// ByUserID returns the prospects the profile of userID is a contact of.
func (s *ProspectService) ByUserID(ctx context.Context, userID uuid.UUID) ([]models.Company, error) {
	profile, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	companies, err := s.store.CompaniesForProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	prospects := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if c.IsProspect() {
			prospects = append(prospects, c)
		}
	}
	return prospects, nil
}

type ProspectPage struct {
	Prospects []models.Company
	Total     int64
}

// Fetch pages through the prospects anywhere below companyID.
func (s *ProspectService) Fetch(ctx context.Context, companyID uuid.UUID, search string, offset, limit int) (*ProspectPage, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	ids, err := descendantIDs(ctx, s.store, companyID)
	if err != nil {
		return nil, err
	}
	prospects, total, err := s.store.ProspectPage(ctx, ids, search, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ProspectPage{Prospects: prospects, Total: total}, nil
}

func (s *ProspectService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CompanyStatus) error {
	switch status {
	case models.CompanyStatusNew, models.CompanyStatusContacted, models.CompanyStatusInProgress,
		models.CompanyStatusWon, models.CompanyStatusLost:
	default:
		return ErrInvalidStatus
	}
	if err := s.store.UpdateCompanyStatus(ctx, id, status); err != nil {
		return err
	}
	s.events.Publish(events.ProspectStatusSet, id, map[string]interface{}{"status": status})
	return nil
}

// Delete removes a prospect and everything hanging off it: stepper sessions,
// proposals, contacts (profiles, associations, auth users), then the company.
// Stages run in order without rollback; a failure is a StageError naming the
// stage that failed.
func (s *ProspectService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { metrics.RecordOperation("prospect_delete", err) }()

	prospect, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	if !prospect.IsProspect() {
		return ErrNotProspect
	}

	if err := s.store.DeleteSessionsForProspect(ctx, id); err != nil {
		return &StageError{Stage: StageStepperSessions, Err: err}
	}
	if err := s.store.DeleteProposalsForProspect(ctx, id); err != nil {
		return &StageError{Stage: StageProposals, Err: err}
	}
	if err := s.deleteContacts(ctx, id); err != nil {
		return &StageError{Stage: StageContacts, Err: err}
	}
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return &StageError{Stage: StageCompany, Err: err}
	}

	s.logger.Info("prospect deleted", "prospect_id", id)
	s.events.Publish(events.ProspectDeleted, id, nil)
	return nil
}

func (s *ProspectService) deleteContacts(ctx context.Context, prospectID uuid.UUID) error {
	contacts, err := s.store.ProfilesForCompany(ctx, prospectID, models.RoleProspect)
	if err != nil {
		return fmt.Errorf("listing contacts: %w", err)
	}
	if err := s.store.DeleteCompanyAssociations(ctx, prospectID); err != nil {
		return fmt.Errorf("removing associations: %w", err)
	}

	profileIDs := make([]uuid.UUID, 0, len(contacts))
	userIDs := make([]uuid.UUID, 0, len(contacts))
	for _, c := range contacts {
		profileIDs = append(profileIDs, c.ID)
		if c.UserID != nil {
			userIDs = append(userIDs, *c.UserID)
		}
	}
	if len(profileIDs) > 0 {
		if err := s.store.DeleteProfiles(ctx, profileIDs); err != nil {
			return fmt.Errorf("removing profiles: %w", err)
		}
	}
	if len(userIDs) > 0 {
		if err := s.users.DeleteUsers(ctx, userIDs); err != nil {
			return fmt.Errorf("removing users: %w", err)
		}
	}
	return nil
}
