package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func withIdentity(r *http.Request, role string) *http.Request {
	ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: "u1"})
	ctx = ctxkeys.WithProfile(ctx, &model.Profile{ID: "u1", Role: role})
	return r.WithContext(ctx)
}

func TestRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(okHandler)(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	RequireAuth(okHandler)(rec, req)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))

	rec = httptest.NewRecorder()
	RequireAuth(okHandler)(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/dashboard", nil), model.RoleMember))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		wantCode int
		wantLoc  string
	}{
		{"anonymous", "", http.StatusSeeOther, "/login"},
		{"member", model.RoleMember, http.StatusSeeOther, "/dashboard"},
		{"admin", model.RoleAdmin, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.role != "" {
				req = withIdentity(req, tt.role)
			}
			rec := httptest.NewRecorder()
			RequireAdmin(okHandler)(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}

func TestRequireGuest(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireGuest(okHandler)(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/login", nil), model.RoleMember))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	RequireGuest(okHandler)(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	store := testutil.NewStore(t)
	emails := service.NewEmailService("", "noreply@example.com", "http://localhost", "PairTrack", true)
	auth := service.NewAuthService(store, emails, nil, service.AuthOptions{JWTSecret: "secret", JWTExpiry: time.Hour})

	user, err := auth.SignUp("ada@example.com", "tr4ck-me", "Ada")
	require.NoError(t, err)
	token, _, err := auth.StartSession(user, "password")
	require.NoError(t, err)

	var seen *model.Profile
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.Profile(r.Context())
		if u := ctxkeys.User(r.Context()); u != nil {
			assert.Nil(t, u.PasswordHash)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: "tampered"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Nil(t, seen)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
}

func TestCSRFProtection(t *testing.T) {
	handler := CSRFProtection(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	form := url.Values{csrfFormField: {token}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(csrfHeader, token)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.requests)
}

func TestLimitReturnsTooManyRequests(t *testing.T) {
	handler := Limit(NewRateLimiter(1, time.Minute))(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSecurityHeadersUseNonce(t *testing.T) {
	var nonce string
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce = GetNonce(r.Context())
	}), NonceMiddleware, SecurityHeaders)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, nonce)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'nonce-"+nonce+"'")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
