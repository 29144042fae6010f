package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/mailer"
	"github.com/stretchr/testify/mock"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) DeleteUsers(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

type mockContactStore struct {
	mock.Mock
}

func (m *mockContactStore) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactStore) GetSettings(ctx context.Context, companyID uuid.UUID) (*models.CompanySettings, error) {
	args := m.Called(ctx, companyID)
	if s := args.Get(0); s != nil {
		return s.(*models.CompanySettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactStore) CountContacts(ctx context.Context, prospectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, prospectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContactStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockContactStore) AddProfileToCompany(ctx context.Context, companyID, profileID uuid.UUID) error {
	return m.Called(ctx, companyID, profileID).Error(0)
}

func (m *mockContactStore) ProfilesForCompany(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.Profile, error) {
	args := m.Called(ctx, companyID, role)
	return args.Get(0).([]models.Profile), args.Error(1)
}

type mockAccessStore struct {
	mock.Mock
}

func (m *mockAccessStore) CompanyIDsForProfile(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, profileID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessStore) AddProfileToCompany(ctx context.Context, companyID, profileID uuid.UUID) error {
	return m.Called(ctx, companyID, profileID).Error(0)
}

func (m *mockAccessStore) RemoveProfileFromCompany(ctx context.Context, companyID, profileID uuid.UUID) error {
	return m.Called(ctx, companyID, profileID).Error(0)
}

type mockProspectStore struct {
	mock.Mock
}

func (m *mockProspectStore) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProspectStore) ChildCompanyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, parentIDs)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockProspectStore) ProspectPage(ctx context.Context, ids []uuid.UUID, search string, offset, limit int) ([]models.Company, int64, error) {
	args := m.Called(ctx, ids, search, offset, limit)
	return args.Get(0).([]models.Company), args.Get(1).(int64), args.Error(2)
}

func (m *mockProspectStore) UpdateCompanyStatus(ctx context.Context, id uuid.UUID, status models.CompanyStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockProspectStore) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProspectStore) CompaniesForProfile(ctx context.Context, profileID uuid.UUID) ([]models.Company, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]models.Company), args.Error(1)
}

func (m *mockProspectStore) ProfilesForCompany(ctx context.Context, companyID uuid.UUID, role models.Role) ([]models.Profile, error) {
	args := m.Called(ctx, companyID, role)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *mockProspectStore) DeleteSessionsForProspect(ctx context.Context, prospectID uuid.UUID) error {
	return m.Called(ctx, prospectID).Error(0)
}

func (m *mockProspectStore) DeleteProposalsForProspect(ctx context.Context, prospectID uuid.UUID) error {
	return m.Called(ctx, prospectID).Error(0)
}

func (m *mockProspectStore) DeleteCompanyAssociations(ctx context.Context, companyID uuid.UUID) error {
	return m.Called(ctx, companyID).Error(0)
}

func (m *mockProspectStore) DeleteProfiles(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockProspectStore) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// fakePDF returns a fixed document, or err when set.
type fakePDF struct {
	html string
	err  error
}

func (f *fakePDF) Generate(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 test"), nil
}

type fakeUploader struct {
	keys map[string][]byte
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if f.keys == nil {
		f.keys = make(map[string][]byte)
	}
	f.keys[key] = body
	return nil
}

func (f *fakeUploader) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://files.test/" + key + "?X-Amz-Expires=3600", nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg_1", nil
}

type fakeRenderer struct{}

func (fakeRenderer) Proposal(p *models.Proposal, prospect *models.Company) (string, error) {
	return "<h1>" + p.Title + "</h1><p>" + prospect.Name + "</p>", nil
}

var errBoom = errors.New("boom")
