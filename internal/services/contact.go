package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
)

// ContactStore is the data access needed to manage prospect contacts.
type ContactStore interface {
	settingsGetter
	CountContacts(ctx context.Context, prospectID uuid.UUID) (int64, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	AddProfileToCompany(ctx context.Context, companyID, profileID uuid.UUID) error
	ProfilesForCompany(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.Profile, error)
}

type ContactService struct {
	store  ContactStore
	users  auth.UserManager
	logger *slog.Logger
}

func NewContactService(st ContactStore, users auth.UserManager, logger *slog.Logger) *ContactService {
	return &ContactService{store: st, users: users, logger: logger}
}

func (s *ContactService) List(ctx context.Context, prospectID uuid.UUID) ([]models.Profile, error) {
	return s.store.ProfilesForCompany(ctx, prospectID, models.RoleProspect)
}

// Create adds a contact to a prospect once the quota of the root
// organisation allows it. Nothing is written when the quota is reached.
func (s *ContactService) Create(ctx context.Context, prospectID uuid.UUID, in validation.ContactInput) (*models.Profile, error) {
	prospect, err := s.store.GetCompany(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if !prospect.IsProspect() {
		return nil, ErrNotProspect
	}

	settings, err := settingsFor(ctx, s.store, prospectID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountContacts(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if count >= int64(settings.ContactsPerProspect) {
		s.logger.Info("contact quota reached",
			"prospect_id", prospectID,
			"count", count,
			"limit", settings.ContactsPerProspect,
		)
		return nil, ErrContactQuotaReached
	}

	user, err := s.users.CreateUser(ctx, in.Email, "")
	if err != nil {
		return nil, &StageError{Stage: "user", Err: err}
	}

	profile := &models.Profile{
		UserID:    &user.ID,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Phone:     in.Phone,
		JobTitle:  in.JobTitle,
		Role:      models.RoleProspect,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if cleanupErr := s.users.DeleteUsers(ctx, []uuid.UUID{user.ID}); cleanupErr != nil {
			s.logger.Error("failed to remove orphan user", "user_id", user.ID, "error", cleanupErr)
		}
		return nil, &StageError{Stage: "profile", Err: err}
	}
	if err := s.store.AddProfileToCompany(ctx, prospectID, profile.ID); err != nil {
		return nil, &StageError{Stage: "association", Err: err}
	}
	return profile, nil
}
