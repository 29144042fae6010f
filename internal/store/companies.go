package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

// CompanyUpdate holds the optional fields of a partial company update. Nil
// fields are left untouched.
type CompanyUpdate struct {
	Name      *string
	Siren     *string
	Siret     *string
	Sector    *string
	Status    *models.CompanyStatus
	HeatLevel *models.HeatLevel
}

func (u CompanyUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Siren != nil {
		cols["siren"] = *u.Siren
	}
	if u.Siret != nil {
		cols["siret"] = *u.Siret
	}
	if u.Sector != nil {
		cols["sector"] = *u.Sector
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.HeatLevel != nil {
		cols["heat_level"] = *u.HeatLevel
	}
	return cols
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.conn(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

// ListRootCompanies returns the companies without parent, optionally filtered
// by a case-insensitive name search.
func (s *Store) ListRootCompanies(ctx context.Context, search string) ([]models.Company, error) {
	q := s.conn(ctx).Where("company_id IS NULL")
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	var companies []models.Company
	if err := q.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("listing root companies: %w", err)
	}
	return companies, nil
}

func (s *Store) ListChildCompanies(ctx context.Context, parentID uuid.UUID, search string) ([]models.Company, error) {
	q := s.conn(ctx).Where("company_id = ?", parentID)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	var companies []models.Company
	if err := q.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("listing child companies: %w", err)
	}
	return companies, nil
}

// ChildCompanyIDs returns the ids of the direct children of all given parents.
func (s *Store) ChildCompanyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := s.conn(ctx).Model(&models.Company{}).
		Where("company_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing child ids: %w", err)
	}
	return ids, nil
}

func (s *Store) CountChildCompanies(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Company{}).Where("company_id = ?", parentID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting child companies: %w", err)
	}
	return count, nil
}

// CountProspects counts the prospect companies among ids.
func (s *Store) CountProspects(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.countByType(ctx, ids, models.CompanyTypeProspect)
}

func (s *Store) CountFolders(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.countByType(ctx, ids, models.CompanyTypeFolder)
}

func (s *Store) countByType(ctx context.Context, ids []uuid.UUID, t models.CompanyType) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := s.conn(ctx).Model(&models.Company{}).
		Where("id IN ? AND type = ?", ids, t).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting %s companies: %w", t, err)
	}
	return count, nil
}

// ProspectPage lists prospects among ids, newest first.
func (s *Store) ProspectPage(ctx context.Context, ids []uuid.UUID, search string, offset, limit int) ([]models.Company, int64, error) {
	if len(ids) == 0 {
		return []models.Company{}, 0, nil
	}
	q := s.conn(ctx).Model(&models.Company{}).
		Where("id IN ? AND type = ?", ids, models.CompanyTypeProspect)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting prospects: %w", err)
	}

	var companies []models.Company
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("listing prospects: %w", err)
	}
	return companies, total, nil
}

func (s *Store) FindCompanyBySiren(ctx context.Context, siren string) (*models.Company, error) {
	var company models.Company
	if err := s.conn(ctx).Where("siren = ?", siren).First(&company).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (s *Store) FindCompanyBySiret(ctx context.Context, siret string) (*models.Company, error) {
	var company models.Company
	if err := s.conn(ctx).Where("siret = ?", siret).First(&company).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

// CompanyHasSiren reports whether company id itself is registered with siren.
// Establishments of one legal entity share a SIREN, so other rows may match too.
func (s *Store) CompanyHasSiren(ctx context.Context, id uuid.UUID, siren string) (bool, error) {
	return s.companyHasIdentifier(ctx, "siren", id, siren)
}

func (s *Store) CompanyHasSiret(ctx context.Context, id uuid.UUID, siret string) (bool, error) {
	return s.companyHasIdentifier(ctx, "siret", id, siret)
}

func (s *Store) companyHasIdentifier(ctx context.Context, column string, id uuid.UUID, value string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Company{}).
		Where("id = ? AND "+column+" = ?", id, value).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking company %s: %w", column, err)
	}
	return n > 0, nil
}

func (s *Store) CreateCompany(ctx context.Context, company *models.Company) error {
	if err := s.conn(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("creating company: %w", translate(err))
	}
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, id uuid.UUID, update CompanyUpdate) (*models.Company, error) {
	cols := update.columns()
	if len(cols) > 0 {
		res := s.conn(ctx).Model(&models.Company{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("updating company: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetCompany(ctx, id)
}

func (s *Store) UpdateCompanyStatus(ctx context.Context, id uuid.UUID, status models.CompanyStatus) error {
	res := s.conn(ctx).Model(&models.Company{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating company status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Company{})
	if res.Error != nil {
		return fmt.Errorf("deleting company: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
