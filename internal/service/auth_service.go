package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

var (
	ErrAuthValidation      = errors.New("auth validation failed")
	ErrEmailAlreadyUsed    = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserNotFound        = errors.New("user not found")
	ErrGoogleLoginDisabled = errors.New("google sign-in is not configured")
	ErrInvalidGoogleToken  = errors.New("invalid google token")
	ErrPasswordTooWeak     = errors.New("password too weak")
	errSessionNotPersisted = errors.New("session could not be stored")
)

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type googleValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	audience string
	logger   *zap.Logger

	validateGoogle googleValidator
}

// NewAuthService builds the auth service. An empty googleAudience disables
// Google sign-in.
func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, jwtManager *util.JWTManager, googleAudience string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		jwt:            jwtManager,
		audience:       strings.TrimSpace(googleAudience),
		logger:         logger,
		validateGoogle: idtoken.Validate,
	}
}

func (s *AuthService) GoogleEnabled() bool {
	return s.audience != ""
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: Name, email, and password are required", ErrAuthValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email must be a valid address", ErrAuthValidation)
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPasswordTooWeak, err.Error())
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateEmailUser(ctx, name, email, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issueSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: Email and password are required", ErrAuthValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if !s.GoogleEnabled() {
		return nil, ErrGoogleLoginDisabled
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: idToken is required", ErrAuthValidation)
	}

	payload, err := s.validateGoogle(ctx, idToken, s.audience)
	if err != nil {
		s.logger.Warn("google token rejected", zap.Error(err))
		return nil, ErrInvalidGoogleToken
	}

	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidGoogleToken
	}
	name, _ := payload.Claims["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}
	var picture *string
	if p, ok := payload.Claims["picture"].(string); ok && p != "" {
		picture = &p
	}

	user, err := s.users.UpsertGoogleUser(ctx, name, email, picture)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// Authenticate resolves a bearer token to its user. The token must carry a
// valid signature and belong to an active session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	session, err := s.sessions.FindActiveSession(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: session is not active", ErrUnauthorized)
		}
		return nil, err
	}
	if session.UserID != uuid.Nil && session.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: session does not match token", ErrUnauthorized)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeactivateSession(ctx, token); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, fmt.Errorf("%w: %v", errSessionNotPersisted, err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
