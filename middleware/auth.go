package middleware

import (
	"errors"
	"strings"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/gin-gonic/gin"
)

const (
	UserContextKey = "userID"
	AuthCookieName = "authToken"
)

// TokenValidator resolves a session token to the user id it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AuthMiddleware requires a valid session token, read from the authToken
// cookie or an "Authorization: Bearer" header.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		userID, err := tokens.ValidateToken(token)
		if err != nil {
			_ = c.Error(apperrors.New(apperrors.ErrInvalidToken.Code, apperrors.ErrInvalidToken.Message, err))
			c.Abort()
			return
		}

		c.Set(UserContextKey, userID)
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(AuthCookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
