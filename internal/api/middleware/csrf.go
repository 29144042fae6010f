package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfTokenExpiry = 24 * time.Hour
)

type csrfToken struct {
	value     string
	expiresAt time.Time
}

// CSRFStore keeps one token per dashboard session, in memory.
type CSRFStore struct {
	tokens map[string]csrfToken
	mu     sync.Mutex
	now    func() time.Time
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{
		tokens: make(map[string]csrfToken),
		now:    time.Now,
	}
}

// Purge drops expired tokens and returns how many were removed.
func (s *CSRFStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for sessionID, token := range s.tokens {
		if now.After(token.expiresAt) {
			delete(s.tokens, sessionID)
			removed++
		}
	}
	return removed
}

// GetOrCreate returns the live token of a session, issuing one if needed.
func (s *CSRFStore) GetOrCreate(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.tokens[sessionID]; ok && s.now().Before(token.expiresAt) {
		return token.value
	}

	buf := make([]byte, csrfTokenLength)
	if _, err := rand.Read(buf); err != nil {
		panic("csrf: reading random bytes: " + err.Error())
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	s.tokens[sessionID] = csrfToken{value: value, expiresAt: s.now().Add(csrfTokenExpiry)}
	return value
}

func (s *CSRFStore) Validate(sessionID, provided string) bool {
	s.mu.Lock()
	token, ok := s.tokens[sessionID]
	s.mu.Unlock()

	if !ok || s.now().After(token.expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token.value), []byte(provided)) == 1
}

// CSRF protects cookie-authenticated form posts of the dashboard. Requests
// carrying a bearer token are not exposed to CSRF and pass through.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				ensureCSRFCookie(w, r, store)
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := getSessionID(r)
			if sessionID == "" {
				writeError(w, http.StatusForbidden, "Session required")
				return
			}

			token := r.Header.Get(csrfHeaderName)
			if token == "" {
				token = r.FormValue(csrfFormField)
			}
			if token == "" {
				writeError(w, http.StatusForbidden, "CSRF token missing")
				return
			}
			if !store.Validate(sessionID, token) {
				writeError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore) {
	sessionID := getSessionID(r)
	if sessionID == "" {
		return
	}
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    store.GetOrCreate(sessionID),
		Path:     "/",
		HttpOnly: false, // read by the dashboard scripts
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

// getSessionID derives the session id from the token cookie. Tokens share
// their JWT header, so the whole value is hashed.
func getSessionID(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(cookie.Value))
	return hex.EncodeToString(sum[:16])
}

// GetCSRFToken returns the token to embed in dashboard forms.
func GetCSRFToken(r *http.Request, store *CSRFStore) string {
	sessionID := getSessionID(r)
	if sessionID == "" {
		return ""
	}
	return store.GetOrCreate(sessionID)
}
