package middleware

import (
	"fmt"
	"net/http"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
)

// SecurityHeaders sets the CSP and the usual hardening headers. Inline
// scripts run only with the request's nonce.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scriptSrc := "'self'"
		if nonce := GetNonce(r.Context()); nonce != "" {
			scriptSrc = fmt.Sprintf("'self' 'nonce-%s'", nonce)
		}

		h := w.Header()
		h.Set("Content-Security-Policy", fmt.Sprintf(
			"default-src 'self'; script-src %s; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; "+
				"form-action 'self' https://accounts.google.com https://github.com; frame-ancestors 'none'; base-uri 'self'",
			scriptSrc,
		))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
