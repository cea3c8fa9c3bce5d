package middleware

import (
	"context"
	"net/http"
	"strings"

	"reward-admin/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionAccountKey = "account_id"

// AccountLoader resolves the account behind a token or session.
type AccountLoader interface {
	Get(ctx context.Context, id uint) (*models.Account, error)
}

// RequireAuth accepts a Bearer token or, failing that, the console session
// cookie. The account is reloaded on every request so deleted accounts and
// role changes take effect immediately.
func RequireAuth(tokens *TokenIssuer, accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id uint

		if header := c.GetHeader("Authorization"); header != "" {
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header {
				abortJSON(c, http.StatusUnauthorized, "invalid authorization header format")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				abortJSON(c, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			id = claims.AccountID
		} else if v, ok := sessions.Default(c).Get(sessionAccountKey).(uint); ok {
			id = v
		}

		if id == 0 {
			abortJSON(c, http.StatusUnauthorized, "authentication required")
			return
		}

		account, err := accounts.Get(c.Request.Context(), id)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "account not found")
			return
		}
		setAccount(c, *account)
		c.Next()
	}
}

// RequireRole admits accounts whose role is min or higher.
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !account.Role.AtLeast(min) {
			abortJSON(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// StartSession stores the account in the console session cookie.
func StartSession(c *gin.Context, accountID uint) error {
	sess := sessions.Default(c)
	sess.Set(sessionAccountKey, accountID)
	return sess.Save()
}

func EndSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
