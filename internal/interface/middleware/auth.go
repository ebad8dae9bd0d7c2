package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
	"github.com/oksasatya/go-marketplace-api/pkg/response"
)

// Context keys set by the auth gates.
const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "userName"
	CtxEmailKey    = "userEmail"
)

// BasicAuth gates the login route on HTTP basic credentials. Lookup
// miss and password mismatch both abort with the same generic 401.
func BasicAuth(users *application.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "missing credentials", nil)
			return
		}
		u, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUsernameKey, u.Username)
		c.Set(CtxEmailKey, u.Email)
		c.Next()
	}
}

// BearerAuth gates mutating item routes on a bearer token. The embedded
// claim is trusted as-is; with revalidate the claim's user id must
// still resolve against the credential store.
func BearerAuth(tm *helpers.TokenManager, users *application.UserService, revalidate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := tm.Parse(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		if revalidate && !users.Exists(c.Request.Context(), claims.UserID) {
			response.AbortError(c, http.StatusUnauthorized, "unknown identity", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Set(CtxEmailKey, claims.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
