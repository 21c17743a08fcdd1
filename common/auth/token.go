package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenType is the "typ" claim carried by session tokens.
const AccessTokenType = "access"

// TokenService is responsible for creating and validating session JWTs.
type TokenService struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService signing with secret; tokens are
// valid for expiry.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secretKey: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry is the validity window of issued tokens.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// GenerateToken issues a signed HS256 session token for userID.
func (s *TokenService) GenerateToken(userID string) (string, error) {
	if len(s.secretKey) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":    userID,
		"userId": userID,
		"typ":    AccessTokenType,
		"iat":    now.Unix(),
		"exp":    now.Add(s.expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// ValidateToken parses tokenStr and returns the user id it was issued for.
func (s *TokenService) ValidateToken(tokenStr string) (string, error) {
	if len(s.secretKey) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != AccessTokenType {
		return "", fmt.Errorf("invalid token type")
	}
	if _, ok := claims["exp"]; !ok {
		return "", fmt.Errorf("token has no expiry")
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid token: subject claim is missing")
	}
	return userID, nil
}
