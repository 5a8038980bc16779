package service_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, store *repository.Store, bus *events.Bus, confirm bool) (*service.AuthService, *testutil.Clock) {
	t.Helper()

	clock := &testutil.Clock{T: testNow}
	emails := service.NewEmailService("", "noreply@example.com", "http://localhost:8090", "PairTrack", true)
	auth := service.NewAuthService(store, emails, bus, service.AuthOptions{
		JWTSecret:                "test-secret",
		JWTExpiry:                24 * time.Hour,
		TokenEmailVerifyExpiry:   time.Hour,
		RequireEmailConfirmation: confirm,
		AdminEmails:              []string{"boss@example.com"},
	})
	auth.SetClock(clock.Now)
	return auth, clock
}

func TestSignUpCreatesProfile(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	user, err := auth.SignUp("  Ada@Example.com ", "tr4ck-me", "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.IsVerified())

	profile, err := store.Profiles.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, profile.Role)
	assert.Equal(t, "Ada Lovelace", profile.DisplayName())

	_, err = auth.SignUp("ada@example.com", "another1", "Ada Again")
	require.ErrorIs(t, err, service.ErrEmailAlreadyExists)
}

func TestSignUpGrantsAdminFromAllowList(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	user, err := auth.SignUp("Boss@example.com", "tr4ck-me", "")
	require.NoError(t, err)

	profile, err := store.Profiles.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin())
	assert.Equal(t, "boss@example.com", profile.DisplayName())
}

func TestSignUpValidation(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	tests := []struct {
		name, email, password string
	}{
		{"bad email", "not-an-email", "tr4ck-me"},
		{"short password", "a@example.com", "abc"},
		{"common password", "b@example.com", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.SignUp(tt.email, tt.password, "")
			require.Error(t, err)
			_, ok := service.UserMessage(err)
			assert.True(t, ok)
		})
	}
}

func TestSignIn(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	_, err := auth.SignUp("ada@example.com", "tr4ck-me", "Ada")
	require.NoError(t, err)

	user, err := auth.SignIn("ADA@example.com", "tr4ck-me")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = auth.SignIn("ada@example.com", "wrong-pass")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.SignIn("nobody@example.com", "tr4ck-me")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSignUpWithEmailConfirmation(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, true)

	user, err := auth.SignUp("ada@example.com", "tr4ck-me", "Ada")
	require.ErrorIs(t, err, service.ErrConfirmationPending)
	require.NotNil(t, user)
	assert.False(t, user.IsVerified())

	_, err = auth.SignIn("ada@example.com", "tr4ck-me")
	require.ErrorIs(t, err, service.ErrEmailNotVerified)

	var token string
	require.NoError(t, store.DB().Get(&token, `SELECT token FROM tokens WHERE user_id = $1`, user.ID))

	verified, err := auth.VerifyEmail(token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified())

	_, err = auth.VerifyEmail(token)
	require.ErrorIs(t, err, service.ErrInvalidVerifyLink, "tokens are single use")

	_, err = auth.SignIn("ada@example.com", "tr4ck-me")
	require.NoError(t, err)
}

func TestAuthenticateOAuth(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	user, err := auth.AuthenticateOAuth("Grace@Example.com", "Grace Hopper", "github")
	require.NoError(t, err)
	assert.True(t, user.IsVerified())
	assert.False(t, user.HasPassword())

	again, err := auth.AuthenticateOAuth("grace@example.com", "", "google")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, err = auth.SignIn("grace@example.com", "whatever")
	require.ErrorIs(t, err, service.ErrPasswordlessAccount)
}

func TestSessionLifecycle(t *testing.T) {
	store := testutil.NewStore(t)
	bus := events.NewBus()
	defer bus.Close()
	auth, clock := newAuthService(t, store, bus, false)

	changes, cancel := auth.OnSessionChange(4)
	defer cancel()

	user, err := auth.SignUp("ada@example.com", "tr4ck-me", "Ada")
	require.NoError(t, err)

	token, expiry, err := auth.StartSession(user, "password")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(24*time.Hour), expiry)

	signedIn := <-changes
	assert.Equal(t, events.TypeSignedIn, signedIn.Type)
	assert.Equal(t, user.ID, signedIn.UserID)

	identity, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.User.ID)
	assert.Equal(t, user.ID, identity.Profile.ID)

	require.NoError(t, auth.SignOut(identity.Session.ID, user.ID))
	signedOut := <-changes
	assert.Equal(t, events.TypeSignedOut, signedOut.Type)

	_, err = auth.Authenticate(token)
	require.ErrorIs(t, err, service.ErrInvalidSession, "revoked sessions stop working")

	token, _, err = auth.StartSession(user, "password")
	require.NoError(t, err)
	clock.Advance(25 * time.Hour)
	_, err = auth.Authenticate(token)
	require.ErrorIs(t, err, service.ErrInvalidSession, "expired sessions stop working")

	_, err = auth.Authenticate("garbage")
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestJWTCookie(t *testing.T) {
	store := testutil.NewStore(t)
	auth, _ := newAuthService(t, store, nil, false)

	rec := httptest.NewRecorder()
	auth.SetJWTCookie(rec, "value", testNow.Add(time.Hour))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, service.AuthCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	auth.ClearJWTCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}
