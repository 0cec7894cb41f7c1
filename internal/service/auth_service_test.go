package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/domain"
	"interview-coach/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret-key-that-is-long-enough-32",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		GoogleOAuth: config.GoogleOAuthConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/callback"},
		Admin:       config.AdminConfig{Password: "admin"},
	}
}

func newTestAuthService(t *testing.T, users domain.UserRepository) *authServiceImpl {
	t.Helper()
	svc, err := NewAuthService(users, testAuthConfig())
	require.NoError(t, err)
	return svc.(*authServiceImpl)
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewAuthService_ShortSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWT.SecretKey = "short"
	_, err := NewAuthService(new(MockUserRepository), cfg)
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("reserved email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newTestAuthService(t, users)
		_, err := svc.Register(ctx, dto.RegisterRequest{Name: "x", Email: "Admin@Admin.com", Password: "secret1"})
		requireCode(t, err, domain.ErrReservedEmail)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByEmail", ctx, "alice@example.com").Return(&domain.StoredUser{Email: "alice@example.com"}, nil)
		svc := newTestAuthService(t, users)
		_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Alice", Email: " ALICE@example.com", Password: "secret1"})
		requireCode(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("stores lower-cased email and bcrypt hash", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *domain.StoredUser) bool {
			ok, _ := CheckPassword(u.PasswordHash, "secret1")
			return u.Email == "alice@example.com" && u.Name == "Alice" && ok
		})).Return(&domain.StoredUser{ID: "01", Name: "Alice", Email: "alice@example.com"}, nil)

		svc := newTestAuthService(t, users)
		user, err := svc.Register(ctx, dto.RegisterRequest{Name: " Alice ", Email: "Alice@Example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, domain.User{Name: "Alice", Email: "alice@example.com"}, *user)
		users.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, "alice@example.com").Return(&domain.StoredUser{Name: "Alice", Email: "alice@example.com", PasswordHash: hash}, nil)
	users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)
	users.On("FindByEmail", ctx, "google@example.com").Return(&domain.StoredUser{Name: "G", Email: "google@example.com"}, nil)
	svc := newTestAuthService(t, users)

	user, err := svc.Login(ctx, dto.LoginRequest{Email: "admin@admin.com", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.User{Name: "Admin", Email: domain.AdminEmail}, *user)
	assert.True(t, user.IsAdmin())

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "admin@admin.com", Password: "nope"})
	requireCode(t, err, domain.ErrInvalidCredentials)

	user, err = svc.Login(ctx, dto.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	requireCode(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	requireCode(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "google@example.com", Password: ""})
	requireCode(t, err, domain.ErrInvalidCredentials)

	// admin never touches the store
	users.AssertNotCalled(t, "FindByEmail", ctx, domain.AdminEmail)
}

func TestAuthService_TokensCarrySession(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, "alice@example.com").Return(&domain.StoredUser{Name: "Alice B", Email: "alice@example.com"}, nil)
	svc := newTestAuthService(t, users)

	tokens, err := svc.IssueTokens(ctx, "session-1", domain.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	claims, err := svc.ValidateJWT(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, domain.User{Name: "Alice", Email: "alice@example.com"}, claims.User())

	refreshed, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	claims, err = svc.ValidateJWT(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "Alice B", claims.Name, "refresh picks up the stored name")

	_, err = svc.RefreshToken(ctx, tokens.AccessToken)
	requireCode(t, err, domain.ErrUnauthorized)

	_, err = svc.ValidateJWT(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestAuthService_RefreshToken_UserNotFound(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, "gone@example.com").Return(nil, nil)
	svc := newTestAuthService(t, users)

	tokens, err := svc.IssueTokens(ctx, "s", domain.User{Name: "Gone", Email: "gone@example.com"})
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	requireCode(t, err, domain.ErrNotFound)
}

func TestAuthService_RefreshToken_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t, new(MockUserRepository))
	svc.appConfig.JWT.RefreshTokenTTL = -time.Minute

	tokens, err := svc.IssueTokens(ctx, "s", domain.User{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	requireCode(t, err, domain.ErrUnauthorized)
}

func TestAuthService_GoogleLoginURL(t *testing.T) {
	svc := newTestAuthService(t, new(MockUserRepository))
	url, err := svc.GetGoogleLoginURL("state-1")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-1")

	svc.appConfig.GoogleOAuth.ClientID = ""
	_, err = svc.GetGoogleLoginURL("state-1")
	assert.ErrorIs(t, err, ErrGoogleLoginDisabled)
}

func TestAuthService_HandleGoogleCallback(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			assert.Equal(t, "Bearer google-token", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"id":"g-1","email":"New@Example.com","verified_email":true,"name":"New User"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.StoredUser) bool {
		return u.Email == "new@example.com" && u.Name == "New User" && u.PasswordHash == ""
	})).Return(&domain.StoredUser{ID: "01", Name: "New User", Email: "new@example.com"}, nil)

	svc := newTestAuthService(t, users)
	svc.oauth2Config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	svc.userInfoURL = srv.URL + "/userinfo"

	_, err := svc.HandleGoogleCallback(ctx, "code", "state-a", "state-b")
	assert.ErrorIs(t, err, ErrInvalidAuthState)

	user, err := svc.HandleGoogleCallback(ctx, "code", "state-a", "state-a")
	require.NoError(t, err)
	assert.Equal(t, domain.User{Name: "New User", Email: "new@example.com"}, *user)
	users.AssertExpectations(t)
}
