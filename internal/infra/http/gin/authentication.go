package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"academy/internal/infra/security"
)

const principalContextKey = "academy.principal"

type principal struct {
	ID    string
	Name  string
	Token string
}

// AuthMiddleware resolves the bearer token, from the Authorization header or
// the token query parameter, into a principal. Unauthenticated requests pass
// through; handlers decide whether they need one.
type AuthMiddleware struct {
	Tokens security.TokenIssuer
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}
	if token == "" {
		c.Next()
		return
	}
	claims, err := m.Tokens.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{ID: claims.Subject, Name: claims.Name, Token: token})
	c.Set("user_id", claims.Subject)
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
