package routes_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/pairtrack/pairtrack/internal/config"
	"github.com/pairtrack/pairtrack/internal/routes"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
	c   *http.Client
}

func newServer(t *testing.T) *client {
	t.Helper()

	cfg := &config.Config{
		AppName:     "PairTrack",
		AppEnv:      "development",
		AppURL:      "http://localhost",
		JWTSecret:   "test-secret",
		JWTExpiry:   time.Hour,
		Timezone:    "UTC",
		AdminEmails: []string{"admin@example.com"},
	}
	store := testutil.NewStore(t)
	a, err := app.Build(cfg, store.DB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:   t,
		srv: srv,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.c.Get(c.srv.URL + path)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

// post submits a form with the CSRF token issued on an earlier GET.
func (c *client) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", c.cookie("csrf_token"))
	resp, err := c.c.PostForm(c.srv.URL+path, form)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

func (c *client) cookie(name string) string {
	u, _ := url.Parse(c.srv.URL)
	for _, ck := range c.c.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPublicRoutes(t *testing.T) {
	c := newServer(t)

	resp, body := c.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)

	resp, _ = c.get("/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body = c.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))

	resp, _ = c.get("/assets/css/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = c.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "pairtrack_")

	resp, _ = c.get("/definitely/not/here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProtectedRoutesRedirectGuests(t *testing.T) {
	c := newServer(t)

	for _, path := range []string{"/dashboard", "/profile", "/room/abc", "/admin", "/admin/pairs"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	c := newServer(t)

	resp, err := c.c.PostForm(c.srv.URL+"/login", url.Values{"email": {"a@example.com"}, "password": {"x"}})
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSignupAndAdminAccess(t *testing.T) {
	c := newServer(t)
	c.get("/signup")

	resp, _ := c.post("/signup", url.Values{
		"full_name": {"Ada"},
		"email":     {"ada@example.com"},
		"password":  {"correct-horse-42"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.NotEmpty(t, c.cookie("auth_token"))

	resp, body := c.get("/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Ada")

	resp, _ = c.get("/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, _ = c.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = c.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = c.get("/dashboard")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAdminCanRunTheWeek(t *testing.T) {
	c := newServer(t)
	c.get("/signup")

	resp, _ := c.post("/signup", url.Values{
		"full_name": {"Root"},
		"email":     {"admin@example.com"},
		"password":  {"correct-horse-42"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := c.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No active week")

	resp, _ = c.post("/admin/week/reset", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin?notice=reset", resp.Header.Get("Location"))

	resp, body = c.get("/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "0 members")
}
