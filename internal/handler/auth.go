package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pairtrack/pairtrack/internal/config"
	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

// oauthIdentity is what a provider tells us about the person signing in.
type oauthIdentity struct {
	Email string
	Name  string
}

type oauthProvider struct {
	name   string
	config *oauth2.Config
	fetch  func(ctx context.Context, client *http.Client) (oauthIdentity, error)
}

type AuthHandler struct {
	authService *service.AuthService
	providers   map[string]*oauthProvider
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{
		authService: authService,
		providers:   map[string]*oauthProvider{},
	}
	if cfg.GoogleClientID != "" {
		h.providers["google"] = &oauthProvider{
			name: "google",
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/google/callback",
				Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
				Endpoint:     google.Endpoint,
			},
			fetch: fetchGoogleIdentity,
		}
	}
	if cfg.GitHubClientID != "" {
		h.providers["github"] = &oauthProvider{
			name: "github",
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/github/callback",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
			fetch: fetchGitHubIdentity,
		}
	}
	return h
}

func (h *AuthHandler) form(email, name, msg string) pages.AuthForm {
	return pages.AuthForm{
		Email:  email,
		Name:   name,
		Error:  msg,
		Google: h.providers["google"] != nil,
		GitHub: h.providers["github"] != nil,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login(h.form("", "", "")))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Login(h.form(email, "", "Email and password are required")))
		return
	}

	user, err := h.authService.SignIn(email, password)
	if err != nil {
		status, msg := failure(err, "sign in failed", "email", email)
		if status == http.StatusUnprocessableEntity {
			slog.Warn("sign in rejected", "reason", msg, "email", email)
		}
		ui.RenderStatus(w, r, status, pages.Login(h.form(email, "", msg)))
		return
	}

	err = h.startSession(w, user, "password")
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Login(h.form(email, "", genericError)))
		return
	}

	slog.Info("user signed in with password", "user_id", user.ID)
	middleware.Redirect(w, r, "/dashboard")
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Signup(h.form("", "", "")))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("full_name"))
	password := r.FormValue("password")

	user, err := h.authService.SignUp(email, password, name)
	if errors.Is(err, service.ErrConfirmationPending) {
		ui.Render(w, r, pages.CheckEmail(user.Email))
		return
	}
	if err != nil {
		status, msg := failure(err, "sign up failed", "email", email)
		ui.RenderStatus(w, r, status, pages.Signup(h.form(email, name, msg)))
		return
	}

	err = h.startSession(w, user, "password")
	if err != nil {
		slog.Error("failed to start session after sign up", "error", err, "user_id", user.ID)
		middleware.Redirect(w, r, "/login")
		return
	}
	middleware.Redirect(w, r, "/dashboard")
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	user, err := h.authService.VerifyEmail(token)
	if err != nil {
		status, msg := failure(err, "email verification failed")
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		ui.RenderStatus(w, r, status, pages.Message("Confirmation failed", msg))
		return
	}

	err = h.startSession(w, user, "email")
	if err != nil {
		slog.Error("failed to start session after verification", "error", err, "user_id", user.ID)
		middleware.Redirect(w, r, "/login")
		return
	}
	middleware.Redirect(w, r, "/dashboard")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	if session != nil {
		err := h.authService.SignOut(session.ID, session.UserID)
		if err != nil {
			slog.Error("failed to revoke session", "error", err, "session_id", session.ID)
		}
	}
	h.authService.ClearJWTCookie(w)
	middleware.Redirect(w, r, "/login")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *model.User, method string) error {
	token, expiry, err := h.authService.StartSession(user, method)
	if err != nil {
		return err
	}
	h.authService.SetJWTCookie(w, token, expiry)
	return nil
}

// OAuthStart redirects to the provider's consent screen. Unconfigured
// providers are not found.
func (h *AuthHandler) OAuthStart(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := h.providers[name]
		if provider == nil {
			ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
			return
		}
		h.oauthStart(w, r, provider)
	}
}

func (h *AuthHandler) oauthStart(w http.ResponseWriter, r *http.Request, provider *oauthProvider) {
	state := generateOAuthState()
	cfg := ctxkeys.Config(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, provider.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallback finishes the provider flow and signs the user in.
func (h *AuthHandler) OAuthCallback(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := h.providers[name]
		if provider == nil {
			ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
			return
		}
		h.oauthCallback(w, r, provider)
	}
}

func (h *AuthHandler) oauthCallback(w http.ResponseWriter, r *http.Request, provider *oauthProvider) {
	fail := func(msg string) {
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Login(h.form("", "", msg)))
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "provider", provider.name, "error", err)
		fail("Sign in failed. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider.name)
		fail("Sign in failed. Please try again.")
		return
	}

	token, err := provider.config.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", provider.name, "error", err)
		fail("Sign in failed. Please try again.")
		return
	}

	identity, err := provider.fetch(r.Context(), provider.config.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to fetch oauth identity", "provider", provider.name, "error", err)
		fail("Sign in failed. Please try again.")
		return
	}
	if identity.Email == "" {
		fail("Your " + provider.name + " account has no verified email address.")
		return
	}

	user, err := h.authService.AuthenticateOAuth(identity.Email, identity.Name, provider.name)
	if err != nil {
		_, msg := failure(err, "oauth authentication failed", "provider", provider.name)
		fail(msg)
		return
	}

	err = h.startSession(w, user, provider.name)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		fail(genericError)
		return
	}

	slog.Info("user signed in with oauth", "user_id", user.ID, "provider", provider.name)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func fetchGoogleIdentity(ctx context.Context, client *http.Client) (oauthIdentity, error) {
	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &info)
	if err != nil {
		return oauthIdentity{}, err
	}
	if !info.VerifiedEmail {
		return oauthIdentity{Name: info.Name}, nil
	}
	return oauthIdentity{Email: info.Email, Name: info.Name}, nil
}

func fetchGitHubIdentity(ctx context.Context, client *http.Client) (oauthIdentity, error) {
	var user struct {
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	err := getJSON(ctx, client, "https://api.github.com/user", &user)
	if err != nil {
		return oauthIdentity{}, err
	}

	// The profile email may be private; the emails endpoint always lists the primary one.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	err = getJSON(ctx, client, "https://api.github.com/user/emails", &emails)
	if err != nil {
		return oauthIdentity{}, err
	}

	identity := oauthIdentity{Name: user.Name}
	if identity.Name == "" {
		identity.Name = user.Login
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			identity.Email = e.Email
			break
		}
	}
	return identity, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// generateOAuthState creates the random state that ties a callback to its start.
func generateOAuthState() string {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
