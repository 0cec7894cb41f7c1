package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"

	adminDisplayName = "Admin"
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
	ErrGoogleLoginDisabled   = errors.New("google sign-in is not configured")
)

// AuthService registers and signs in candidates and issues the tokens that
// carry a client's session ID.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*domain.User, error)
	GetGoogleLoginURL(state string) (string, error)
	HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (*domain.User, error)
	IssueTokens(ctx context.Context, sessionID string, user domain.User) (*dto.TokenResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error)
}

type authServiceImpl struct {
	userRepo     domain.UserRepository
	oauth2Config *oauth2.Config
	appConfig    *config.Config
	userInfoURL  string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, appConfig *config.Config) (AuthService, error) {
	if len(appConfig.JWT.SecretKey) < 32 {
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}
	return &authServiceImpl{
		userRepo: userRepo,
		oauth2Config: &oauth2.Config{
			ClientID:     appConfig.GoogleOAuth.ClientID,
			ClientSecret: appConfig.GoogleOAuth.ClientSecret,
			RedirectURL:  appConfig.GoogleOAuth.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		appConfig:   appConfig,
		userInfoURL: googleUserInfoURL,
	}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if domain.IsAdminEmail(email) {
		return nil, domain.NewError(domain.ErrReservedEmail, domain.MsgReservedEmail, nil)
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, domain.NewError(domain.ErrDuplicateEmail, domain.MsgDuplicateEmail, nil)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}
	stored, err := s.userRepo.Create(ctx, &domain.StoredUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("email", stored.Email))
	user := stored.User()
	return &user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if domain.IsAdminEmail(email) {
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.appConfig.Admin.Password)) != 1 {
			return nil, domain.NewError(domain.ErrInvalidCredentials, domain.MsgBadCredentials, nil)
		}
		logger.Get().Info("Administrator signed in")
		return &domain.User{Name: adminDisplayName, Email: domain.AdminEmail}, nil
	}

	stored, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if stored == nil {
		return nil, domain.NewError(domain.ErrInvalidCredentials, domain.MsgBadCredentials, nil)
	}
	ok, err := CheckPassword(stored.PasswordHash, req.Password)
	if err != nil {
		logger.Get().Warn("Stored password hash is unusable", zap.String("email", email), zap.Error(err))
	}
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidCredentials, domain.MsgBadCredentials, nil)
	}

	user := stored.User()
	return &user, nil
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) (string, error) {
	if !s.appConfig.GoogleOAuth.Enabled() {
		return "", ErrGoogleLoginDisabled
	}
	return s.oauth2Config.AuthCodeURL(state), nil
}

// HandleGoogleCallback signs in the Google account, registering it on first
// use. Such accounts have no password and can only sign in through Google.
func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (*domain.User, error) {
	appLogger := logger.Get()
	if receivedState == "" || receivedState != expectedState {
		return nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.oauth2Config.Client(ctx, googleToken)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, errors.New("google user info is incomplete")
	}

	email := domain.NormalizeEmail(userInfo.Email)
	if domain.IsAdminEmail(email) {
		return nil, domain.NewError(domain.ErrReservedEmail, domain.MsgReservedEmail, nil)
	}

	stored, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error fetching user by email: %w", err)
	}
	if stored == nil {
		name := strings.TrimSpace(userInfo.Name)
		if name == "" {
			name = email
		}
		stored, err = s.userRepo.Create(ctx, &domain.StoredUser{Name: name, Email: email})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		appLogger.Info("New user created via Google OAuth", zap.String("email", email))
	} else {
		appLogger.Info("User logged in via Google OAuth", zap.String("email", email))
	}

	user := stored.User()
	return &user, nil
}

func (s *authServiceImpl) IssueTokens(ctx context.Context, sessionID string, user domain.User) (*dto.TokenResponse, error) {
	accessToken, err := s.createJWT(sessionID, user, s.appConfig.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	refreshToken, err := s.createJWT(sessionID, user, s.appConfig.JWT.RefreshTokenTTL, tokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authServiceImpl) createJWT(sessionID string, user domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		SessionID: sessionID,
		Email:     user.Email,
		Name:      user.Name,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.Email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired", zap.Error(err), zap.String("token_snippet", snippet(tokenString)))
		} else {
			appLogger.Warn("JWT validation failed", zap.Error(err), zap.String("token_snippet", snippet(tokenString)))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

// RefreshToken exchanges a refresh token for a new pair bound to the same
// session. Deleted accounts cannot refresh.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error) {
	appLogger := logger.Get()
	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, "invalid refresh token", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, domain.NewUnauthorizedError("not a refresh token")
	}

	user := claims.User()
	if !user.IsAdmin() {
		stored, err := s.userRepo.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, domain.NewInternalError("failed to look up user", err)
		}
		if stored == nil {
			appLogger.Warn("User not found for refresh token", zap.String("email", user.Email))
			return nil, domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", user.Email))
		}
		user = stored.User()
	}

	tokens, err := s.IssueTokens(ctx, claims.SessionID, user)
	if err != nil {
		return nil, err
	}
	appLogger.Info("JWT token refreshed", zap.String("email", user.Email), zap.String("session_id", claims.SessionID))
	return tokens, nil
}

func snippet(token string) string {
	return token[:min(len(token), 20)] + "..."
}
