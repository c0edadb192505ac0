package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenConfig holds signing configuration for issued tokens.
type TokenConfig struct {
	SecretKey       string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
	Issuer          string
}

// TokenConfigFromEnv builds the token configuration from JWT_SECRET_KEY and
// JWT_ISSUER, with development defaults.
func TokenConfigFromEnv() TokenConfig {
	cfg := TokenConfig{
		SecretKey:       "dev-secret-change-in-production",
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 7 * 24 * time.Hour,
		Issuer:          "task-api",
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		cfg.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		cfg.Issuer = issuer
	}
	return cfg
}

// tokenClaims are the JWT claims carried by access and refresh tokens.
type tokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 signed tokens.
type TokenManager struct {
	cfg TokenConfig
}

// NewTokenManager creates a TokenManager with the given configuration.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{cfg: cfg}
}

// IssueAccessToken signs a short-lived access token for the given user.
func (m *TokenManager) IssueAccessToken(userID, email string) (string, error) {
	return m.issue(userID, email, tokenTypeAccess, m.cfg.AccessDuration)
}

// IssueRefreshToken signs a long-lived refresh token for the given user.
func (m *TokenManager) IssueRefreshToken(userID, email string) (string, error) {
	return m.issue(userID, email, tokenTypeRefresh, m.cfg.RefreshDuration)
}

func (m *TokenManager) issue(userID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.SecretKey))
}

// VerifyAccessToken validates an access token and returns its claims.
func (m *TokenManager) VerifyAccessToken(tokenString string) (*tokenClaims, error) {
	return m.verify(tokenString, tokenTypeAccess)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*tokenClaims, error) {
	return m.verify(tokenString, tokenTypeRefresh)
}

func (m *TokenManager) verify(tokenString, wantType string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.cfg.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL returns the access token lifetime in seconds.
func (m *TokenManager) AccessTTL() int64 {
	return int64(m.cfg.AccessDuration.Seconds())
}
