package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/service"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

// AuthAPI is the subset of *service.AuthService the handlers use.
type AuthAPI interface {
	Authenticator
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error)
	Me(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth   AuthAPI
	logger *zap.Logger
}

// RegisterAuth mounts /api/auth. perSecond limits requests per client IP; zero disables the limit.
func RegisterAuth(e *echo.Echo, auth AuthAPI, perSecond float64, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &AuthHandler{auth: auth, logger: logger}

	g := e.Group("/api/auth", rateLimiter(perSecond))
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/google", h.google)
	g.GET("/me", h.me, RequireAuth(auth))
	g.POST("/logout", h.logout, RequireAuth(auth))
}

// register handles POST /api/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.authError(c, err, "Server error during registration")
	}
	return c.JSON(http.StatusCreated, tokenResponse("User registered successfully", result))
}

// login handles POST /api/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.authError(c, err, "Server error during login")
	}
	return c.JSON(http.StatusOK, tokenResponse("Login successful", result))
}

// google handles POST /api/auth/google
func (h *AuthHandler) google(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return h.authError(c, err, "Server error during login")
	}
	return c.JSON(http.StatusOK, tokenResponse("Login successful", result))
}

// me handles GET /api/auth/me
func (h *AuthHandler) me(c echo.Context) error {
	current, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("Unauthorized: token missing"))
	}
	user, err := h.auth.Me(c.Request().Context(), current.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		}
		h.logger.Error("load current user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Server error while fetching user"))
	}
	return c.JSON(http.StatusOK, AuthUserResponse{User: toAuthUser(user)})
}

// logout handles POST /api/auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), CurrentToken(c)); err != nil {
		h.logger.Error("logout", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Server error during logout"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *AuthHandler) authError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrAuthValidation):
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, service.ErrAuthValidation)))
	case errors.Is(err, service.ErrPasswordTooWeak):
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, service.ErrPasswordTooWeak)))
	case errors.Is(err, service.ErrEmailAlreadyUsed):
		return c.JSON(http.StatusConflict, util.Error("User with this email already exists"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, util.Error("Invalid email or password"))
	case errors.Is(err, service.ErrInvalidGoogleToken):
		return c.JSON(http.StatusUnauthorized, util.Error("Invalid Google token"))
	case errors.Is(err, service.ErrGoogleLoginDisabled):
		return c.JSON(http.StatusNotFound, util.Error("Google sign-in is not enabled"))
	default:
		h.logger.Error("auth request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}

func tokenResponse(message string, result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Message:   message,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toAuthUser(result.User),
	}
}
