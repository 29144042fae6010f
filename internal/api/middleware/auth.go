package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/store"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenCookie holds the session token of the web dashboard.
const TokenCookie = "token"

// Auth rejects requests without a valid token. Browsers are sent to the login
// page, API clients get a 401.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				handleUnauthorized(w, r)
				return
			}
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				handleUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ProfileGetter loads the profile named in a token.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// ActiveProfile runs after Auth and rejects tokens whose profile was blocked
// or removed after the token was issued.
func ActiveProfile(profiles ProfileGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := profiles.GetProfile(r.Context(), GetProfileID(r.Context()))
			switch {
			case errors.Is(err, store.ErrNotFound):
				handleUnauthorized(w, r)
			case err != nil:
				writeError(w, http.StatusInternalServerError, "Internal server error")
			case profile.Blocked:
				writeError(w, http.StatusForbidden, "Profile is blocked")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// extractToken looks at the Authorization header, then the dashboard cookie,
// then X-Auth-Token.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get("X-Auth-Token")
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") && !strings.HasPrefix(r.URL.Path, "/api/") {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the caller's token claims, or nil outside Auth.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func GetUserID(ctx context.Context) uuid.UUID {
	if c := Claims(ctx); c != nil {
		return c.UserID
	}
	return uuid.Nil
}

func GetProfileID(ctx context.Context) uuid.UUID {
	if c := Claims(ctx); c != nil {
		return c.ProfileID
	}
	return uuid.Nil
}

func GetUserRole(ctx context.Context) models.Role {
	if c := Claims(ctx); c != nil {
		return c.Role
	}
	return ""
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())
			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// RequireStaff rejects prospect contacts.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := Claims(r.Context()); c == nil || !c.IsStaff() {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError answers with the same body shape as the API handlers.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
