package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm/clause"
)

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.conn(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("creating profile: %w", translate(err))
	}
	return nil
}

func (s *Store) DeleteProfiles(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("deleting profiles: %w", err)
	}
	return nil
}

// CompanyIDsForProfile returns every company the profile is associated with.
func (s *Store) CompanyIDsForProfile(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.conn(ctx).Model(&models.CompanyProfile{}).
		Where("profile_id = ?", profileID).
		Pluck("company_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing profile companies: %w", err)
	}
	return ids, nil
}

func (s *Store) CompaniesForProfile(ctx context.Context, profileID uuid.UUID) ([]models.Company, error) {
	var companies []models.Company
	err := s.conn(ctx).
		Joins("JOIN companies_profiles cp ON cp.company_id = companies.id").
		Where("cp.profile_id = ?", profileID).
		Order("companies.name ASC").
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("listing profile companies: %w", err)
	}
	return companies, nil
}

// AddProfileToCompany is idempotent: an existing association is kept.
func (s *Store) AddProfileToCompany(ctx context.Context, companyID, profileID uuid.UUID) error {
	link := models.CompanyProfile{CompanyID: companyID, ProfileID: profileID}
	if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return fmt.Errorf("associating profile: %w", err)
	}
	return nil
}

func (s *Store) RemoveProfileFromCompany(ctx context.Context, companyID, profileID uuid.UUID) error {
	err := s.conn(ctx).
		Where("company_id = ? AND profile_id = ?", companyID, profileID).
		Delete(&models.CompanyProfile{}).Error
	if err != nil {
		return fmt.Errorf("removing profile association: %w", err)
	}
	return nil
}

// ProfilesForCompany lists the profiles linked to a company. An empty role
// returns every profile.
func (s *Store) ProfilesForCompany(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.Profile, error) {
	q := s.conn(ctx).
		Joins("JOIN companies_profiles cp ON cp.profile_id = profiles.id").
		Where("cp.company_id = ?", companyID)
	if role != "" {
		q = q.Where("profiles.role = ?", role)
	}
	var profiles []models.Profile
	if err := q.Order("profiles.lastname ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("listing company profiles: %w", err)
	}
	return profiles, nil
}

// CountContacts counts the prospect-role profiles linked to a prospect.
func (s *Store) CountContacts(ctx context.Context, prospectID uuid.UUID) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Profile{}).
		Joins("JOIN companies_profiles cp ON cp.profile_id = profiles.id").
		Where("cp.company_id = ? AND profiles.role = ?", prospectID, models.RoleProspect).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return count, nil
}

// CountMembers counts the distinct staff profiles (every role but prospect)
// linked to any of the companies.
func (s *Store) CountMembers(ctx context.Context, companyIDs []uuid.UUID) (int64, error) {
	if len(companyIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := s.conn(ctx).Model(&models.Profile{}).
		Joins("JOIN companies_profiles cp ON cp.profile_id = profiles.id").
		Where("cp.company_id IN ? AND profiles.role <> ?", companyIDs, models.RoleProspect).
		Distinct("profiles.id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteCompanyAssociations(ctx context.Context, companyID uuid.UUID) error {
	if err := s.conn(ctx).Where("company_id = ?", companyID).Delete(&models.CompanyProfile{}).Error; err != nil {
		return fmt.Errorf("deleting company associations: %w", err)
	}
	return nil
}
