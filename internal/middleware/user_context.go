package middleware

import (
	"reward-admin/internal/models"

	"github.com/gin-gonic/gin"
)

const currentAccountKey = "CurrentAccount"

func setAccount(c *gin.Context, a models.Account) {
	c.Set(currentAccountKey, a)
}

// CurrentAccount returns the account RequireAuth attached to the request.
func CurrentAccount(c *gin.Context) (models.Account, bool) {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return models.Account{}, false
	}
	a, ok := v.(models.Account)
	return a, ok
}
