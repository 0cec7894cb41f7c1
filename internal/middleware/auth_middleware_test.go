package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ManualMockAuthService implements service.AuthService for middleware tests.
type ManualMockAuthService struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) GetGoogleLoginURL(state string) (string, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*domain.User, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) IssueTokens(ctx context.Context, sessionID string, user domain.User) (*dto.TokenResponse, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errors.New("ValidateJWTFunc not set on mock")
}

func (m *ManualMockAuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error) {
	panic("not implemented in mock")
}

func claimsFor(sid, email, tokenType string) *dto.AuthClaims {
	return &dto.AuthClaims{
		SessionID: sid,
		Email:     email,
		Name:      "Someone",
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestProtected(t *testing.T) {
	tests := []struct {
		name             string
		authHeader       string
		validate         func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
		expectedStatus   int
		expectedCode     string
		expectedSession  string
		expectNextCalled bool
	}{
		{
			name:           "No Auth Header",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "MISSING_AUTH_HEADER",
		},
		{
			name:           "Malformed Auth Header - No Bearer",
			authHeader:     "Basic some_token",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "INVALID_AUTH_SCHEME",
		},
		{
			name:           "Bearer Without Token",
			authHeader:     "Bearer ",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "EMPTY_TOKEN",
		},
		{
			name:       "Invalid Token",
			authHeader: "Bearer invalid_token",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return nil, errors.New("token is expired")
			},
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name:       "Refresh Token Instead Of Access",
			authHeader: "Bearer refresh_token",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return claimsFor("sess-1", "alice@example.com", "refresh"), nil
			},
			expectedStatus: fiber.StatusForbidden,
			expectedCode:   "INVALID_TOKEN_TYPE",
		},
		{
			name:       "Token Without Session",
			authHeader: "Bearer stale_token",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return claimsFor("", "alice@example.com", "access"), nil
			},
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name:       "Valid Access Token",
			authHeader: "Bearer valid_access_token",
			validate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				if tokenString != "valid_access_token" {
					return nil, errors.New("unexpected token")
				}
				return claimsFor("sess-1", "alice@example.com", "access"), nil
			},
			expectedStatus:   fiber.StatusOK,
			expectedSession:  "sess-1",
			expectNextCalled: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			authSvc := &ManualMockAuthService{ValidateJWTFunc: tc.validate}

			nextCalled := false
			var sid string
			var claims *dto.AuthClaims
			app.Get("/protected", middleware.Protected(authSvc), func(c *fiber.Ctx) error {
				nextCalled = true
				sid = middleware.SessionID(c)
				claims = middleware.Claims(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectNextCalled, nextCalled)
			assert.Equal(t, tc.expectedSession, sid)

			if tc.expectedCode != "" {
				var body middleware.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tc.expectedCode, body.Code)
			} else {
				require.NotNil(t, claims)
				assert.Equal(t, "alice@example.com", claims.Email)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	run := func(email string) int {
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		authSvc := &ManualMockAuthService{
			ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return claimsFor("sess-admin", email, "access"), nil
			},
		}
		app.Get("/admin", middleware.Protected(authSvc), middleware.AdminOnly(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, run(domain.AdminEmail))
	assert.Equal(t, fiber.StatusForbidden, run("alice@example.com"))
}
