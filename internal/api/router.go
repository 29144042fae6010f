package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/propale/propale/internal/api/handlers"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/metrics"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/views"
	"github.com/propale/propale/internal/web"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

// Services are the domain services behind the API.
type Services struct {
	Companies *services.CompanyService
	Contacts  *services.ContactService
	Prospects *services.ProspectService
	Proposals *services.ProposalService
	Builder   *services.BuilderService
	Defaults  *services.DefaultContentService
	Stepper   *services.StepperService
	Email     *services.EmailService
	Access    *views.AccessView
}

type RouterConfig struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Store       *store.Store
	Logger      *slog.Logger
	JWTService  *auth.JWTService
	AuthService *auth.Service
	TokenTTL    time.Duration
	Services    Services
	Latest      *views.Latest
	CSRF        *middleware.CSRFStore
	Templates   *web.Pages
	StaticFS    fs.FS
	Queue       handlers.Enqueuer

	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	LegacyHosts    []string
	CanonicalHost  string
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.CanonicalRedirect(cfg.LegacyHosts, cfg.CanonicalHost))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", handlers.FetchScopeHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	svc := cfg.Services
	latest := cfg.Latest
	if latest == nil {
		latest = views.NewLatest()
	}
	csrf := cfg.CSRF
	if csrf == nil {
		csrf = middleware.NewCSRFStore()
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Store, cfg.TokenTTL)
	companyHandler := handlers.NewCompanyHandler(svc.Companies)
	defaultsHandler := handlers.NewDefaultsHandler(svc.Defaults)
	proposalHandler := handlers.NewProposalHandler(svc.Proposals, cfg.Queue)
	prospectHandler := handlers.NewProspectHandler(svc.Prospects, svc.Contacts, latest)
	emailHandler := handlers.NewEmailHandler(svc.Email)
	accessHandler := handlers.NewAccessHandler(svc.Access)
	stepperHandler := handlers.NewStepperHandler(svc.Stepper)
	builderHandler := handlers.NewBuilderHandler(svc.Builder)
	dashboardHandler := handlers.NewDashboardHandler(handlers.DashboardDeps{
		Auth:      cfg.AuthService,
		Store:     cfg.Store,
		Companies: svc.Companies,
		Proposals: svc.Proposals,
		CSRF:      csrf,
		Templates: cfg.Templates,
		TokenTTL:  cfg.TokenTTL,
	}, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))
			r.Use(middleware.ActiveProfile(cfg.Store))

			r.Get("/me", authHandler.Me)

			// Readable by prospect contacts too
			r.Get("/proposals", proposalHandler.List)
			r.Get("/proposals/{id}", proposalHandler.Get)
			r.Get("/prospect/byUserId/{userId}", prospectHandler.ByUserID)
			r.Get("/workflows/{id}", stepperHandler.Workflow)
			r.Get("/stepper/session", stepperHandler.LoadSession)
			r.Post("/stepper/session", stepperHandler.SaveSession)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff)

				r.Get("/company/allWithoutParent", companyHandler.ListRoots)
				r.Get("/company/byCompanyId/{companyId}", companyHandler.ListChildren)
				r.Get("/company/checkSiren", companyHandler.CheckSiren)
				r.Get("/company/checkSiret", companyHandler.CheckSiret)
				r.Get("/company/countAllProspects/{companyId}", companyHandler.CountAllProspects)
				r.Get("/company/countByParentId/{parentId}", companyHandler.CountByParent)
				r.Get("/company/withParentByProfileId/{profileId}", companyHandler.WithParentByProfile)
				r.Get("/company/withoutParentByProfileId/{profileId}", companyHandler.WithoutParentByProfile)
				r.Get("/company/settings/{companyId}", companyHandler.Settings)
				r.Post("/company/create", companyHandler.Create)
				r.Put("/company/update/{id}", companyHandler.Update)
				r.Get("/company/{id}", companyHandler.Get)
				r.With(middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin)).
					Post("/company/{id}/users", companyHandler.CreateUser)

				r.Get("/default-description/{companyId}", defaultsHandler.GetDescription)
				r.Post("/default-description/{companyId}", defaultsHandler.SaveDescription)
				r.Delete("/default-description/{companyId}", defaultsHandler.DeleteDescription)
				r.Get("/default-paragraph/{companyId}", defaultsHandler.ListParagraphs)
				r.Post("/default-paragraph/{companyId}", defaultsHandler.SaveParagraph)
				r.Delete("/default-paragraph/{companyId}", defaultsHandler.DeleteParagraphs)

				r.Post("/proposals", proposalHandler.Create)
				r.Delete("/proposals/{id}", proposalHandler.Delete)
				r.Put("/proposals/{id}/update-status", proposalHandler.UpdateStatus)
				r.Put("/proposals/{id}/content", proposalHandler.ReplaceContent)
				r.Post("/proposals/{id}/pdf", proposalHandler.PDF)
				r.Post("/proposals/{id}/send", proposalHandler.Send)

				r.Get("/builder/{proposalId}", builderHandler.Open)
				r.Delete("/builder/{proposalId}", builderHandler.Discard)
				r.Post("/builder/{proposalId}/items", builderHandler.AddItem)
				r.Put("/builder/{proposalId}/items/{itemId}", builderHandler.EditItem)
				r.Delete("/builder/{proposalId}/items/{itemId}", builderHandler.RemoveItem)
				r.Post("/builder/{proposalId}/move", builderHandler.Move)
				r.Post("/builder/{proposalId}/save", builderHandler.Save)

				r.Get("/prospect/fetch", prospectHandler.Fetch)
				r.Put("/prospect/update-status", prospectHandler.UpdateStatus)
				r.Delete("/prospect/delete/{id}", prospectHandler.Delete)
				r.Get("/prospect/{prospectId}/contacts", prospectHandler.ListContacts)
				r.Post("/prospect/{prospectId}/contacts", prospectHandler.CreateContact)

				r.Get("/profile/{profileId}/access", accessHandler.Get)
				r.With(middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin)).
					Put("/profile/{profileId}/access", accessHandler.Save)

				r.Post("/sendEmail", emailHandler.Send)
			})
		})
	})

	// Web dashboard routes
	r.Get("/login", dashboardHandler.Login)
	r.Post("/login", dashboardHandler.SubmitLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTService))
		r.Use(middleware.CSRF(csrf))
		r.Get("/", dashboardHandler.Index)
		r.Get("/proposals/{id}", dashboardHandler.Proposal)
		r.Post("/logout", dashboardHandler.Logout)
	})

	// Static files
	if cfg.StaticFS != nil {
		fileServer := http.FileServer(http.FS(cfg.StaticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return &Router{r}
}
