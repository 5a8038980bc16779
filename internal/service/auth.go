package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/metrics"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidCredentials  = newUserError("invalid email or password")
	ErrEmailAlreadyExists  = newUserError("an account with this email already exists")
	ErrEmailNotVerified    = newUserError("please confirm your email address before signing in")
	ErrPasswordlessAccount = newUserError("this account signs in with Google or GitHub")
	ErrInvalidEmail        = newUserError("invalid email address")
	ErrInvalidVerifyLink   = newUserError("invalid or expired confirmation link")
	ErrInvalidSession      = errors.New("invalid session")

	// ErrConfirmationPending is returned by SignUp when the account exists but
	// must be confirmed by email before a session can start.
	ErrConfirmationPending = errors.New("email confirmation pending")
)

type AuthOptions struct {
	JWTSecret                string
	JWTExpiry                time.Duration
	TokenEmailVerifyExpiry   time.Duration
	RequireEmailConfirmation bool
	AdminEmails              []string
	IsProduction             bool
}

// Identity is the authenticated caller of a request.
type Identity struct {
	User    *model.User
	Profile *model.Profile
	Session *model.Session
}

type AuthService struct {
	store        *repository.Store
	emailService *EmailService
	bus          *events.Bus
	opts         AuthOptions
	now          func() time.Time
}

func NewAuthService(store *repository.Store, emailService *EmailService, bus *events.Bus, opts AuthOptions) *AuthService {
	return &AuthService{
		store:        store,
		emailService: emailService,
		bus:          bus,
		opts:         opts,
		now:          utcNow,
	}
}

func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// SignUp creates the user and its profile together. The profile role is admin
// for addresses listed in ADMIN_EMAILS.
func (s *AuthService) SignUp(email, password, fullName string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, asUserError(err)
	}
	if fullName != "" {
		err = validation.ValidateName(fullName)
		if err != nil {
			return nil, asUserError(err)
		}
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hash,
		CreatedAt:    now,
	}
	if !s.opts.RequireEmailConfirmation {
		user.EmailVerifiedAt = &now
	}

	err = s.createAccount(user, fullName)
	if err != nil {
		return nil, err
	}

	if !s.opts.RequireEmailConfirmation {
		slog.Info("user signed up", "user_id", user.ID)
		return user, nil
	}

	err = s.sendConfirmation(user, fullName)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed up, confirmation pending", "user_id", user.ID)
	return user, ErrConfirmationPending
}

func (s *AuthService) createAccount(user *model.User, fullName string) error {
	profile := &model.Profile{
		ID:        user.ID,
		Email:     &user.Email,
		Role:      s.roleFor(user.Email),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}
	if fullName != "" {
		profile.FullName = &fullName
	}

	err := s.store.InTx(func(r *repository.Repositories) error {
		err := r.Users.Create(user)
		if err != nil {
			return err
		}
		return r.Profiles.Create(profile)
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *AuthService) roleFor(email string) string {
	if slices.Contains(s.opts.AdminEmails, email) {
		return model.RoleAdmin
	}
	return model.RoleMember
}

func (s *AuthService) sendConfirmation(user *model.User, name string) error {
	err := s.store.Tokens.DeleteByUserAndType(user.ID, model.TokenTypeEmailVerify)
	if err != nil {
		slog.Warn("failed to delete old verification tokens", "error", err, "user_id", user.ID)
	}

	value, err := s.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.store.Tokens.Create(&model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeEmailVerify,
		Token:     value,
		ExpiresAt: s.now().Add(s.opts.TokenEmailVerifyExpiry),
	})
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	err = s.emailService.SendConfirmationEmail(user.Email, value, name)
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

func (s *AuthService) SignIn(email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.store.Users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordlessAccount
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// VerifyEmail consumes a confirmation token and marks the address verified.
func (s *AuthService) VerifyEmail(token string) (*model.User, error) {
	t, err := s.store.Tokens.ConsumeToken(token, s.now())
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, ErrInvalidVerifyLink
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}
	if t.Type != model.TokenTypeEmailVerify {
		return nil, ErrInvalidVerifyLink
	}

	user, err := s.store.Users.ByID(t.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsVerified() {
		now := s.now()
		user.EmailVerifiedAt = &now
		err = s.store.Users.Update(user)
		if err != nil {
			return nil, fmt.Errorf("failed to verify email: %w", err)
		}

		name := ""
		profile, err := s.store.Profiles.ByID(user.ID)
		if err == nil {
			name = profile.DisplayName()
		}
		err = s.emailService.SendWelcomeEmail(user.Email, name)
		if err != nil {
			slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("email verified", "user_id", user.ID)
	return user, nil
}

// AuthenticateOAuth signs in with an address the provider has verified,
// creating the account on first use.
func (s *AuthService) AuthenticateOAuth(email, fullName, provider string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.store.Users.ByEmail(email)
	if err == nil {
		if !user.IsVerified() {
			now := s.now()
			user.EmailVerifiedAt = &now
			err = s.store.Users.Update(user)
			if err != nil {
				slog.Warn("failed to mark email as verified", "error", err, "user_id", user.ID)
			}
		}
		slog.Info("user authenticated via OAuth", "user_id", user.ID, "provider", provider)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	if validation.ValidateName(fullName) != nil {
		fullName = ""
	}

	now := s.now()
	user = &model.User{
		ID:              uuid.New().String(),
		Email:           email,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
	err = s.createAccount(user, fullName)
	if err != nil {
		return nil, err
	}

	slog.Info("new OAuth user created", "user_id", user.ID, "provider", provider)
	return user, nil
}

// StartSession records a session row and signs a JWT that references it.
func (s *AuthService) StartSession(user *model.User, method string) (string, time.Time, error) {
	now := s.now()
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.JWTExpiry),
		CreatedAt: now,
	}

	err := s.store.Sessions.Create(session)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.GenerateJWT(user, session)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}

	metrics.RecordSignIn(method)
	s.publish(events.TypeSignedIn, user.ID, session.ID, method)
	return token, session.ExpiresAt, nil
}

// Authenticate resolves a cookie value to the signed-in identity.
func (s *AuthService) Authenticate(token string) (*Identity, error) {
	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	userID, _ := claims["user_id"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.store.Sessions.ByID(sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID || !session.IsActive(s.now()) {
		return nil, ErrInvalidSession
	}

	user, err := s.store.Users.ByID(userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile, err := s.store.Profiles.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &Identity{User: user, Profile: profile, Session: session}, nil
}

func (s *AuthService) SignOut(sessionID, userID string) error {
	err := s.store.Sessions.Revoke(sessionID, s.now())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.publish(events.TypeSignedOut, userID, sessionID, "")
	return nil
}

// OnSessionChange subscribes to sign-in and sign-out events.
func (s *AuthService) OnSessionChange(buffer int) (<-chan events.Event, func()) {
	return s.bus.Subscribe(buffer, events.TypeSignedIn, events.TypeSignedOut)
}

func (s *AuthService) publish(eventType, userID, sessionID, method string) {
	if s.bus == nil {
		return
	}
	attrs := map[string]string{"session_id": sessionID}
	if method != "" {
		attrs["method"] = method
	}
	s.bus.Publish(events.Event{Type: eventType, UserID: userID, Attrs: attrs})
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User, session *model.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"sid":     session.ID,
		"exp":     session.ExpiresAt.Unix(),
		"iat":     session.CreatedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.opts.JWTSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
