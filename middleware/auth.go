package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	UserContextKey = "userID"
	RoleContextKey = "role"
)

// AuthOptions selects where the caller identity comes from.
type AuthOptions struct {
	// JWTSecret enables Bearer tokens signed with HMAC.
	JWTSecret string
	// TrustGatewayHeaders accepts X-User-ID and X-User-Role as set by the API
	// gateway. Only enable it behind a gateway that strips them from client requests.
	TrustGatewayHeaders bool
}

// AuthMiddleware authenticates the caller. A Bearer token always wins over
// gateway headers, and the headers are ignored unless TrustGatewayHeaders is set.
func AuthMiddleware(opts AuthOptions) gin.HandlerFunc {
	var secret []byte
	if opts.JWTSecret != "" {
		secret = []byte(opts.JWTSecret)
	}

	return func(c *gin.Context) {
		var userID, role string

		token, hasToken := bearerToken(c.GetHeader("Authorization"))
		switch {
		case hasToken && secret != nil:
			claims, err := parseToken(token, secret)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			userID = claimString(claims, "user_id")
			if userID == "" {
				userID = claimString(claims, "sub")
			}
			role = claimString(claims, "role")
		case opts.TrustGatewayHeaders:
			userID = c.GetHeader("X-User-ID")
			role = c.GetHeader("X-User-Role")
		}

		if userID == "" {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized)
			return
		}

		c.Set(UserContextKey, userID)
		c.Set(RoleContextKey, role)
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

// AdminOnly restricts access to admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(RoleContextKey); role != "admin" {
			c.AbortWithStatusJSON(apperrors.ErrForbidden.Code, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func parseToken(tokenStr string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); ok && typ != "access" {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
