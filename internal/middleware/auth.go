package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/service"
)

// AuthMiddleware resolves the auth cookie to a user, profile and session and
// stores them in the request context. Requests without a valid cookie pass
// through anonymously; a stale cookie is cleared.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AuthCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authService.Authenticate(cookie.Value)
			if err != nil {
				if !errors.Is(err, service.ErrInvalidSession) {
					slog.Error("failed to authenticate request", "error", err, "path", r.URL.Path)
				}
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Never keep the password hash around in the request context
			identity.User.PasswordHash = nil

			ctx := ctxkeys.WithUser(r.Context(), identity.User)
			ctx = ctxkeys.WithProfile(ctx, identity.Profile)
			ctx = ctxkeys.WithSession(ctx, identity.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			Redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin lets only admins through. Anonymous visitors go to the login
// page, members to their dashboard.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.IsAdmin(r.Context()) {
			Redirect(w, r, "/dashboard")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireGuest keeps signed-in users away from the login and sign-up pages.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			Redirect(w, r, "/dashboard")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Redirect issues a full page redirect, using HX-Redirect for HTMX requests.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
