package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/logger"
	"interview-coach/internal/middleware"
	"interview-coach/internal/service"
	"interview-coach/internal/util"
	"interview-coach/internal/validation"
	"interview-coach/internal/voice"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateCookieName = "oauthstate"

type AuthHandler struct {
	authService service.AuthService
	controller  service.InterviewController
	voice       *voice.Hub
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, controller service.InterviewController, hub *voice.Hub) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		controller:  controller,
		voice:       hub,
		validator:   validation.NewValidator(),
	}
}

// Register creates an account and signs it in.
// @Summary Register
// @Description Creates a candidate account, opens a new interview session and starts question generation.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Email taken or reserved"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateRegisterRequest(req); len(errs) > 0 {
		return errs
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	resp, err := h.signIn(c, *user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login signs in a candidate or the administrator.
// @Summary Login
// @Description Verifies credentials and opens a new interview session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateLoginRequest(req); len(errs) > 0 {
		return errs
	}

	user, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	resp, err := h.signIn(c, *user)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// signIn mints a session for user, feeds it the login event and issues the
// tokens that carry the session ID.
func (h *AuthHandler) signIn(c *fiber.Ctx, user domain.User) (*dto.AuthResponse, error) {
	sessionID := util.NewULID()
	session, err := h.controller.Dispatch(c.UserContext(), sessionID, domain.LoggedIn{User: user})
	if err != nil {
		return nil, err
	}
	tokens, err := h.authService.IssueTokens(c.UserContext(), sessionID, user)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("User signed in",
		zap.String("email", user.Email),
		zap.String("session_id", sessionID),
		zap.String("state", session.State.String()))
	return &dto.AuthResponse{TokenResponse: *tokens, Session: dto.NewSessionView(session)}, nil
}

// GoogleLogin initiates the Google OAuth2 login flow.
// @Summary Initiate Google Login
// @Description Redirects the user to Google's OAuth2 consent page.
// @Tags auth
// @Success 307 {string} string "Redirects to Google"
// @Failure 404 {object} middleware.ErrorResponse "Google sign-in is not configured"
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return domain.NewInternalError("Could not generate state for OAuth flow", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	loginURL, err := h.authService.GetGoogleLoginURL(state)
	if errors.Is(err, service.ErrGoogleLoginDisabled) {
		return domain.NewNotFoundError("Google sign-in is not configured")
	}
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
	return c.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles the callback from Google OAuth2.
// @Summary Google OAuth2 Callback
// @Description Signs in the Google account, registering it on first use.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State string for CSRF protection"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid state or code"
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	appLogger := logger.Get()
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	if code == "" {
		return domain.NewInvalidInputError("Authorization code is missing")
	}

	user, err := h.authService.HandleGoogleCallback(c.UserContext(), code, receivedState, expectedState)
	if err != nil {
		appLogger.Warn("Google sign-in failed", zap.Error(err))
		var domainErr *domain.DomainError
		switch {
		case errors.As(err, &domainErr):
			return err
		case errors.Is(err, service.ErrInvalidAuthState), errors.Is(err, service.ErrFailedToExchangeToken):
			return domain.NewInvalidInputError(err.Error())
		}
		return domain.NewInternalError("Error processing Google login", err)
	}

	resp, err := h.signIn(c, *user)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RefreshToken issues new tokens for the same session.
// @Summary Refresh JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse "Refresh token invalid or expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if req.RefreshToken == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("refresh_token")}
	}

	tokens, err := h.authService.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

// Logout ends the session and clears everything persisted for it.
// @Summary Logout
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	if _, err := h.controller.Dispatch(c.UserContext(), sessionID, domain.LoggedOut{}); err != nil {
		return err
	}
	h.controller.Forget(sessionID)
	h.voice.Close(sessionID)

	logger.Get().Info("User logged out", zap.String("session_id", sessionID))
	return c.JSON(dto.MessageResponse{Message: "Logout successful. Please discard your tokens."})
}
