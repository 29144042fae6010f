package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Every connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateTestCompany creates a company under parent (nil for a root).
func CreateTestCompany(t *testing.T, db *gorm.DB, parent *uuid.UUID, companyType models.CompanyType, name string) *models.Company {
	t.Helper()

	company := &models.Company{
		Base:      models.Base{ID: uuid.New()},
		Name:      name,
		CompanyID: parent,
		Type:      companyType,
		Status:    models.CompanyStatusNew,
		HeatLevel: models.HeatLevelCold,
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}

// CreateTestSettings attaches settings to a root company.
func CreateTestSettings(t *testing.T, db *gorm.DB, companyID uuid.UUID, contactsPerProspect int) *models.CompanySettings {
	t.Helper()

	settings := &models.CompanySettings{
		CompanyID:           companyID,
		WorkflowsAllowed:    3,
		UsersAllowed:        10,
		ContactsPerProspect: contactsPerProspect,
		FoldersAllowed:      10,
		LicenseType:         "starter",
	}
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return settings
}

// CreateTestUser creates an active auth user with password "testpassword123".
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProfile creates a profile for user (may be nil) linked to the
// given companies.
func CreateTestProfile(t *testing.T, db *gorm.DB, user *models.User, role models.Role, companyIDs ...uuid.UUID) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Base:      models.Base{ID: uuid.New()},
		Firstname: "Test",
		Lastname:  "Profile",
		Email:     "profile-" + uuid.New().String()[:8] + "@example.com",
		Role:      role,
	}
	if user != nil {
		profile.UserID = &user.ID
		profile.Email = user.Email
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	for _, id := range companyIDs {
		link := models.CompanyProfile{CompanyID: id, ProfileID: profile.ID}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("failed to link test profile: %v", err)
		}
	}
	return profile
}

// CreateTestProposal creates a proposal for a prospect.
func CreateTestProposal(t *testing.T, db *gorm.DB, prospectID uuid.UUID, status models.ProposalStatus) *models.Proposal {
	t.Helper()

	proposal := &models.Proposal{
		Base:       models.Base{ID: uuid.New()},
		ProspectID: prospectID,
		Title:      "Proposal " + uuid.New().String()[:8],
		Status:     status,
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("failed to create test proposal: %v", err)
	}
	return proposal
}

// CreateTestWorkflow creates a workflow with steps x subSteps x questions.
func CreateTestWorkflow(t *testing.T, db *gorm.DB, companyID uuid.UUID, steps, subSteps, questions int) *models.Workflow {
	t.Helper()

	wf := &models.Workflow{CompanyID: companyID, Name: "Audit"}
	for i := 0; i < steps; i++ {
		step := models.Step{Position: i, Title: "Step"}
		for j := 0; j < subSteps; j++ {
			sub := models.SubStep{Position: j, Title: "Sub-step"}
			for k := 0; k < questions; k++ {
				sub.Questions = append(sub.Questions, models.Question{
					Position: k,
					Label:    "Question",
					Kind:     models.QuestionKindText,
				})
			}
			step.SubSteps = append(step.SubSteps, sub)
		}
		wf.Steps = append(wf.Steps, step)
	}
	if err := db.Create(wf).Error; err != nil {
		t.Fatalf("failed to create test workflow: %v", err)
	}
	return wf
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given profile
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User, profile *models.Profile) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user, profile)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	Store      *store.Store
	JWTService *auth.JWTService
	Org        *models.Company
	Settings   *models.CompanySettings
	User       *models.User
	Profile    *models.Profile
	Token      string
}

// NewTestContext creates a root organisation with settings, an admin user
// linked to it, and a token for that user.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	org := CreateTestCompany(t, db, nil, models.CompanyTypeFolder, "Acme")
	settings := CreateTestSettings(t, db, org.ID, 2)
	user := CreateTestUser(t, db)
	profile := CreateTestProfile(t, db, user, models.RoleAdmin, org.ID)
	token := GenerateTestToken(t, jwtService, user, profile)

	return &TestSetup{
		DB:         db,
		Store:      store.New(db),
		JWTService: jwtService,
		Org:        org,
		Settings:   settings,
		User:       user,
		Profile:    profile,
		Token:      token,
	}
}
