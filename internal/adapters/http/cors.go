package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"
	"strings"
)

// corsMiddleware reflects the request origin back when it matches one of
// the configured patterns. Browser map clients hit the ROI endpoints
// cross-origin, so the allow list covers every ledger verb.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours
			w.Header().Set("Vary", "Origin")
		}

		// Preflight requests end here
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) isOriginAllowed(origin string) bool {
	for _, pattern := range s.config.CORS.AllowedOrigins {
		if matchOrigin(origin, pattern) {
			return true
		}
	}
	return false
}

// matchOrigin reports whether an origin satisfies a configured pattern.
// A pattern is either a literal origin or a subdomain wildcard such as
// "*.example.com". The wildcard requires a subdomain: "sub.example.com"
// matches, the bare apex "example.com" does not.
func matchOrigin(origin, pattern string) bool {
	if origin == pattern {
		return true
	}

	suffix, ok := strings.CutPrefix(pattern, "*")
	if !ok || !strings.HasPrefix(suffix, ".") {
		return false
	}

	host := extractHost(origin)
	return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
}

// extractHost reduces an origin URL to its bare host:
// "https://example.com:8080" becomes "example.com".
func extractHost(origin string) string {
	host := origin
	if _, rest, ok := strings.Cut(host, "://"); ok {
		host = rest
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if h, _, ok := strings.Cut(host, "/"); ok {
		host = h
	}
	return host
}
