package middlewares

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"urbanfix-be/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// IdentityFrom returns the verified identity attached by RequireAuth or
// OptionalAuth, or nil for an anonymous request.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// tokenFromRequest looks for the token in the Authorization header first and
// falls back to the auth_token cookie set at login.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	if authHeader != "" {
		return authHeader
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// parseIdentity verifies the request token. It returns (nil, nil) when no
// token was presented at all.
func parseIdentity(c *gin.Context) (*models.Identity, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return nil, nil
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid authorization token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return &models.Identity{Email: email, Name: name, Role: role}, nil
}

// RequireAuth rejects requests that do not carry a valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := parseIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and treats
// everything else, including an unparseable token, as anonymous.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := parseIdentity(c); err == nil && identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireAdmin gates moderation routes. It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
