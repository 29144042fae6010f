package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/web"
)

type DashboardHandler struct {
	authService *auth.Service
	store       *store.Store
	companies   *services.CompanyService
	proposals   *services.ProposalService
	csrf        *middleware.CSRFStore
	templates   *web.Pages
	tokenTTL    time.Duration
	logger      *slog.Logger
}

type DashboardDeps struct {
	Auth      *auth.Service
	Store     *store.Store
	Companies *services.CompanyService
	Proposals *services.ProposalService
	CSRF      *middleware.CSRFStore
	Templates *web.Pages
	TokenTTL  time.Duration
}

func NewDashboardHandler(deps DashboardDeps, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		authService: deps.Auth,
		store:       deps.Store,
		companies:   deps.Companies,
		proposals:   deps.Proposals,
		csrf:        deps.CSRF,
		templates:   deps.Templates,
		tokenTTL:    deps.TokenTTL,
		logger:      logger,
	}
}

type dashboardStats struct {
	Organisations int
	Prospects     int64
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	roots, err := h.companies.RootsForProfile(r.Context(), profile.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats := dashboardStats{Organisations: len(roots)}
	for _, root := range roots {
		n, err := h.companies.CountAllProspects(r.Context(), root.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		stats.Prospects += n
	}

	h.render(w, http.StatusOK, "dashboard.html", map[string]interface{}{
		"Profile":       profile,
		"CSRFToken":     middleware.GetCSRFToken(r, h.csrf),
		"Stats":         stats,
		"Organisations": roots,
	})
}

// Proposal shows the rendered proposal, as it will be printed.
func (h *DashboardHandler) Proposal(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	proposal, err := h.proposals.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if profile.Role == models.RoleProspect && proposal.Status == models.ProposalStatusDraft {
		http.NotFound(w, r)
		return
	}
	prospect, err := h.companies.Get(r.Context(), proposal.ProspectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "proposal.html", map[string]interface{}{
		"Profile":   profile,
		"CSRFToken": middleware.GetCSRFToken(r, h.csrf),
		"Document":  web.NewProposalDocument(proposal, prospect),
	})
}

func (h *DashboardHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", nil)
}

// SubmitLogin handles the login form and sets the session cookie.
func (h *DashboardHandler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", map[string]interface{}{"Error": "Formulaire invalide"})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		status, _ := loginFailure(err)
		msg := "Identifiants invalides"
		if status == http.StatusForbidden {
			msg = "Compte désactivé"
		} else if status == http.StatusInternalServerError {
			h.logger.Error("dashboard login failed", "error", err)
			msg = "Connexion impossible, réessayez plus tard"
		}
		h.render(w, status, "login.html", map[string]interface{}{"Error": msg})
		return
	}

	setTokenCookie(w, r, resp.Token, h.tokenTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *DashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *DashboardHandler) profile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	profile, err := h.store.GetProfile(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil || profile.Blocked {
		clearTokenCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return profile, true
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	h.logger.Error("dashboard page failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *DashboardHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}
