package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/store"
)

type CompanyService struct {
	store  *store.Store
	users  auth.UserManager
	events events.Publisher
	logger *slog.Logger
}

func NewCompanyService(st *store.Store, users auth.UserManager, pub events.Publisher, logger *slog.Logger) *CompanyService {
	return &CompanyService{store: st, users: users, events: pub, logger: logger}
}

func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.store.GetCompany(ctx, id)
}

func (s *CompanyService) ListRoots(ctx context.Context, search string) ([]models.Company, error) {
	return s.store.ListRootCompanies(ctx, search)
}

func (s *CompanyService) ListChildren(ctx context.Context, parentID uuid.UUID, search string) ([]models.Company, error) {
	return s.store.ListChildCompanies(ctx, parentID, search)
}

// Root returns the root organisation of the tree containing id.
func (s *CompanyService) Root(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return rootOf(ctx, s.store, id)
}

// Subtree returns the ids of every company below id.
func (s *CompanyService) Subtree(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return descendantIDs(ctx, s.store, id)
}

// Settings returns the settings of the root organisation governing id.
func (s *CompanyService) Settings(ctx context.Context, id uuid.UUID) (*models.CompanySettings, error) {
	return settingsFor(ctx, s.store, id)
}

type settingsGetter interface {
	companyGetter
	GetSettings(ctx context.Context, companyID uuid.UUID) (*models.CompanySettings, error)
}

func settingsFor(ctx context.Context, g settingsGetter, id uuid.UUID) (*models.CompanySettings, error) {
	root, err := rootOf(ctx, g, id)
	if err != nil {
		return nil, err
	}
	settings, err := g.GetSettings(ctx, root.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w (%s)", ErrSettingsNotFound, root.Name)
	}
	return settings, err
}

// CountAllProspects counts the prospects anywhere below companyID.
func (s *CompanyService) CountAllProspects(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return 0, err
	}
	ids, err := s.Subtree(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return s.store.CountProspects(ctx, ids)
}

// CountChildren counts the direct children of parentID.
func (s *CompanyService) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	return s.store.CountChildCompanies(ctx, parentID)
}

// IdentifierCheck is the answer of a SIREN/SIRET availability check.
type IdentifierCheck struct {
	Exists    bool       `json:"exists"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// CheckSiren reports whether siren is already registered. Registered on
// companyID itself is a conflict; registered elsewhere is informational.
func (s *CompanyService) CheckSiren(ctx context.Context, companyID *uuid.UUID, siren string) (*IdentifierCheck, error) {
	return s.checkIdentifier(ctx, companyID, "SIREN", siren, s.store.CompanyHasSiren, s.store.FindCompanyBySiren)
}

func (s *CompanyService) CheckSiret(ctx context.Context, companyID *uuid.UUID, siret string) (*IdentifierCheck, error) {
	return s.checkIdentifier(ctx, companyID, "SIRET", siret, s.store.CompanyHasSiret, s.store.FindCompanyBySiret)
}

func (s *CompanyService) checkIdentifier(
	ctx context.Context,
	companyID *uuid.UUID,
	label, value string,
	holds func(context.Context, uuid.UUID, string) (bool, error),
	find func(context.Context, string) (*models.Company, error),
) (*IdentifierCheck, error) {
	if companyID != nil {
		own, err := holds(ctx, *companyID, value)
		if err != nil {
			return nil, err
		}
		if own {
			return nil, fmt.Errorf("%s %s is already registered on this company: %w", label, value, store.ErrConflict)
		}
	}

	existing, err := find(ctx, value)
	if errors.Is(err, store.ErrNotFound) {
		return &IdentifierCheck{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}
	id := existing.ID
	return &IdentifierCheck{
		Exists:    true,
		CompanyID: &id,
		Message:   fmt.Sprintf("%s %s is already used by %s", label, value, existing.Name),
	}, nil
}

type CreateCompanyInput struct {
	Name      string
	Siren     string
	Siret     string
	Sector    string
	ParentID  *uuid.UUID
	Type      models.CompanyType
	Status    models.CompanyStatus
	HeatLevel models.HeatLevel
}

// Create adds a company. Prospects need a parent; sub-folders count against
// the folder quota of the root organisation.
func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	if in.Type == "" {
		in.Type = models.CompanyTypeFolder
	}
	if in.Status == "" {
		in.Status = models.CompanyStatusNew
	}
	if in.HeatLevel == "" {
		in.HeatLevel = models.HeatLevelCold
	}
	if in.Type == models.CompanyTypeProspect && in.ParentID == nil {
		return nil, ErrParentRequired
	}

	if in.ParentID != nil {
		if _, err := s.store.GetCompany(ctx, *in.ParentID); err != nil {
			return nil, fmt.Errorf("loading parent: %w", err)
		}
		if in.Type == models.CompanyTypeFolder {
			if err := s.checkFolderQuota(ctx, *in.ParentID); err != nil {
				return nil, err
			}
		}
	}

	company := &models.Company{
		Name:      in.Name,
		Siren:     in.Siren,
		Siret:     in.Siret,
		Sector:    in.Sector,
		CompanyID: in.ParentID,
		Type:      in.Type,
		Status:    in.Status,
		HeatLevel: in.HeatLevel,
	}
	err := s.store.WithTransaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateCompany(ctx, company); err != nil {
			return err
		}
		if !company.IsRoot() {
			return nil
		}
		settings := DefaultSettings(company.ID)
		return tx.UpsertSettings(ctx, &settings)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company created", "company_id", company.ID, "type", company.Type)
	s.events.Publish(events.CompanyCreated, company.ID, company)
	return company, nil
}

// DefaultSettings is the starter licence attached to new root organisations.
func DefaultSettings(companyID uuid.UUID) models.CompanySettings {
	return models.CompanySettings{
		CompanyID:           companyID,
		WorkflowsAllowed:    1,
		UsersAllowed:        5,
		ContactsPerProspect: 3,
		FoldersAllowed:      10,
		LicenseType:         "starter",
	}
}

func (s *CompanyService) checkFolderQuota(ctx context.Context, parentID uuid.UUID) error {
	root, err := rootOf(ctx, s.store, parentID)
	if err != nil {
		return err
	}
	settings, err := s.store.GetSettings(ctx, root.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSettingsNotFound
	}
	if err != nil {
		return err
	}
	ids, err := descendantIDs(ctx, s.store, root.ID)
	if err != nil {
		return err
	}
	folders, err := s.store.CountFolders(ctx, ids)
	if err != nil {
		return err
	}
	if folders >= int64(settings.FoldersAllowed) {
		return ErrFolderQuotaReached
	}
	return nil
}

func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, update store.CompanyUpdate) (*models.Company, error) {
	company, err := s.store.UpdateCompany(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.CompanyUpdated, company.ID, company)
	return company, nil
}

// WithParentByProfile lists the non-root companies a profile is linked to.
func (s *CompanyService) WithParentByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Company, error) {
	companies, err := s.store.CompaniesForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if !c.IsRoot() {
			out = append(out, c)
		}
	}
	return out, nil
}

// RootsForProfile resolves the distinct root organisations of every company
// the profile is linked to.
func (s *CompanyService) RootsForProfile(ctx context.Context, profileID uuid.UUID) ([]models.Company, error) {
	companies, err := s.store.CompaniesForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool)
	roots := make([]models.Company, 0)
	for _, c := range companies {
		root := c
		if !c.IsRoot() {
			r, err := rootOf(ctx, s.store, c.ID)
			if err != nil {
				return nil, err
			}
			root = *r
		}
		if !seen[root.ID] {
			seen[root.ID] = true
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// CreatedUser is the outcome of the create-user workflow.
type CreatedUser struct {
	Company *models.Company `json:"company"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// CreateUser runs the create-user workflow under companyID: optionally a new
// sub-company, then the auth user, the profile and the association. The
// auth user is removed again when a later step fails.
func (s *CompanyService) CreateUser(ctx context.Context, companyID uuid.UUID, in validation.CreateUserInput) (*CreatedUser, error) {
	target, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	root, err := rootOf(ctx, s.store, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUserQuota(ctx, root.ID); err != nil {
		return nil, err
	}

	if in.Company != nil {
		target, err = s.Create(ctx, CreateCompanyInput{
			Name:     in.Company.Name,
			Siren:    in.Company.Siren,
			Siret:    in.Company.Siret,
			Sector:   in.Company.Sector,
			ParentID: &companyID,
			Type:     models.CompanyTypeFolder,
		})
		if err != nil {
			return nil, &StageError{Stage: "company", Err: err}
		}
	}

	user, err := s.users.CreateUser(ctx, in.User.Email, in.User.Password)
	if err != nil {
		return nil, &StageError{Stage: "user", Err: err}
	}

	profile := &models.Profile{
		UserID:    &user.ID,
		Firstname: in.Profile.Firstname,
		Lastname:  in.Profile.Lastname,
		Email:     in.Profile.Email,
		Phone:     in.Profile.Phone,
		JobTitle:  in.Profile.JobTitle,
		Role:      models.Role(in.Profile.Role),
	}
	err = s.store.WithTransaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateProfile(ctx, profile); err != nil {
			return err
		}
		return tx.AddProfileToCompany(ctx, target.ID, profile.ID)
	})
	if err != nil {
		if cleanupErr := s.users.DeleteUsers(ctx, []uuid.UUID{user.ID}); cleanupErr != nil {
			s.logger.Error("failed to remove orphan user", "user_id", user.ID, "error", cleanupErr)
		}
		return nil, &StageError{Stage: "profile", Err: err}
	}

	s.logger.Info("user created", "profile_id", profile.ID, "company_id", target.ID, "role", profile.Role)
	return &CreatedUser{Company: target, User: user, Profile: profile}, nil
}

func (s *CompanyService) checkUserQuota(ctx context.Context, rootID uuid.UUID) error {
	settings, err := s.store.GetSettings(ctx, rootID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSettingsNotFound
	}
	if err != nil {
		return err
	}
	ids, err := descendantIDs(ctx, s.store, rootID)
	if err != nil {
		return err
	}
	members, err := s.store.CountMembers(ctx, append(ids, rootID))
	if err != nil {
		return err
	}
	if members >= int64(settings.UsersAllowed) {
		return ErrUserQuotaReached
	}
	return nil
}
