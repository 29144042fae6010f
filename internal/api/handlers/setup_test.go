package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/propale/propale/internal/api"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/mailer"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/testutil"
	"github.com/propale/propale/internal/views"
	"github.com/propale/propale/internal/web"
	"github.com/propale/propale/pkg/util"
	"github.com/stretchr/testify/require"
)

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

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: "critical", Type: task.Type()}, nil
}

type testServer struct {
	router http.Handler
	tc     *testutil.TestSetup
	pdf    *fakePDF
	mail   *fakeMailer
	queue  *fakeQueue
}

// newTestServer wires the full router on an in-memory database. The default
// identity is an admin of the "Acme" root organisation.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tc := testutil.NewTestContext(t)
	logger := util.DiscardLogger()
	users := auth.NewService(tc.Store, tc.JWTService)

	renderer, err := web.NewDocumentRenderer()
	require.NoError(t, err)
	templates, err := web.LoadTemplates()
	require.NoError(t, err)

	ts := &testServer{tc: tc, pdf: &fakePDF{}, mail: &fakeMailer{}, queue: &fakeQueue{}}

	proposals := services.NewProposalService(tc.Store, services.ProposalDeps{
		Renderer: renderer,
		PDF:      ts.pdf,
		Mailer:   ts.mail,
		Events:   events.Noop{},
	}, logger)
	defaults := services.NewDefaultContentService(tc.Store)

	ts.router = api.NewRouter(api.RouterConfig{
		DB:          tc.DB,
		Store:       tc.Store,
		Logger:      logger,
		JWTService:  tc.JWTService,
		AuthService: users,
		TokenTTL:    time.Hour,
		Services: api.Services{
			Companies: services.NewCompanyService(tc.Store, users, events.Noop{}, logger),
			Contacts:  services.NewContactService(tc.Store, users, logger),
			Prospects: services.NewProspectService(tc.Store, users, events.Noop{}, logger),
			Proposals: proposals,
			Builder:   services.NewBuilderService(proposals, defaults, views.NewDraftStore()),
			Defaults:  defaults,
			Stepper:   services.NewStepperService(tc.Store),
			Email:     services.NewEmailService(ts.mail, logger),
			Access:    views.NewAccessView(services.NewAccessService(tc.Store)),
		},
		Templates:     templates,
		Queue:         ts.queue,
		LegacyHosts:   []string{"propale.co"},
		CanonicalHost: "app.propale.co",
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return ts.doAs(t, ts.tc.Token, method, path, body)
}

func (ts *testServer) doAs(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// prospectContact creates a prospect under the root organisation and a
// contact of it, and returns the contact's token.
func (ts *testServer) prospectContact(t *testing.T) (*models.Company, string) {
	t.Helper()
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	user := testutil.CreateTestUser(t, ts.tc.DB)
	profile := testutil.CreateTestProfile(t, ts.tc.DB, user, models.RoleProspect, prospect.ID)
	return prospect, testutil.GenerateTestToken(t, ts.tc.JWTService, user, profile)
}

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}
