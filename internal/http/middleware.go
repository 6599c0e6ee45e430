package http

import (
	"net/http"
	"strings"
)

// SecurityHeaders adds security-related headers to all responses. In
// production browsers are also told to stay on HTTPS, matching the Secure
// session cookie.
func SecurityHeaders(isProduction bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if isProduction {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// Swagger UI needs scripts, styles, and images to render
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			} else {
				w.Header().Set("Content-Security-Policy", "default-src 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
