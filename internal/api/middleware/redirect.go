package middleware

import (
	"net"
	"net/http"
	"strings"
)

// CanonicalRedirect permanently redirects /api/ requests addressed to one of
// the legacy hosts to the canonical host. 308 keeps the method and body.
func CanonicalRedirect(legacyHosts []string, canonicalHost string) func(http.Handler) http.Handler {
	legacy := make(map[string]bool, len(legacyHosts))
	for _, h := range legacyHosts {
		legacy[strings.ToLower(h)] = true
	}

	return func(next http.Handler) http.Handler {
		if canonicalHost == "" || len(legacy) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") || !legacy[hostname(r.Host)] {
				next.ServeHTTP(w, r)
				return
			}
			target := "https://" + canonicalHost + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func hostname(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	return strings.ToLower(host)
}
