package middleware

import (
	"net/http"
	"strings"

	"github.com/helmdeck/helm/internal/config"
)

// CORS allows browser clients on the configured origins to call the API.
// Local origins are always admitted since the server is a personal
// daemon that normally fronts a localhost UI.
func CORS(c config.Config) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(c.Security.AllowedOrigins))
	for _, o := range c.Security.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, allowed) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
		return true
	}
	return IsLocalOrigin(origin)
}

// IsLocalOrigin reports whether origin points at the local machine.
func IsLocalOrigin(origin string) bool {
	for _, prefix := range []string{
		"http://localhost:", "https://localhost:",
		"http://127.0.0.1:", "https://127.0.0.1:",
	} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return origin == "http://localhost" || origin == "http://127.0.0.1"
}
