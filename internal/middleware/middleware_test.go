package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reward-admin/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type accountMap map[uint]models.Account

func (m accountMap) Get(_ context.Context, id uint) (*models.Account, error) {
	a, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &a, nil
}

var testAccounts = accountMap{
	1: {ID: 1, Username: "user", Role: models.RoleUser},
	2: {ID: 2, Username: "manager", Role: models.RoleManager},
	3: {ID: 3, Username: "admin", Role: models.RoleAdmin},
	4: {ID: 4, Username: "root", Role: models.RoleSuperAdmin},
}

func newTestRouter(tokens *TokenIssuer, min models.Role) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(RequestLogger(zap.NewNop()))

	r.POST("/login/:id", func(c *gin.Context) {
		id := map[string]uint{"1": 1, "2": 2, "3": 3, "4": 4}[c.Param("id")]
		if err := StartSession(c, id); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = EndSession(c)
		c.Status(http.StatusNoContent)
	})

	r.GET("/protected", RequireAuth(tokens, testAccounts), RequireRole(min), func(c *gin.Context) {
		a, _ := CurrentAccount(c)
		c.String(http.StatusOK, a.Username)
	})
	return r
}

func bearer(t *testing.T, tokens *TokenIssuer, a models.Account) string {
	t.Helper()
	tok, _, err := tokens.Issue(a)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	tok, exp, err := tokens.Issue(testAccounts[3])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.AccountID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "3", claims.Subject)

	_, err = NewTokenIssuer("other", time.Hour).Parse(tok)
	assert.Error(t, err, "wrong secret")

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(testAccounts[3])
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.Error(t, err, "expired")

	_, err = tokens.Parse("not-a-token")
	assert.Error(t, err)
}

func TestRequireRoleHierarchy(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)

	tests := []struct {
		min     models.Role
		allowed []uint
	}{
		{models.RoleUser, []uint{1, 2, 3, 4}},
		{models.RoleManager, []uint{2, 3, 4}},
		{models.RoleAdmin, []uint{3, 4}},
		{models.RoleSuperAdmin, []uint{4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.min), func(t *testing.T) {
			r := newTestRouter(tokens, tt.min)
			allowed := map[uint]bool{}
			for _, id := range tt.allowed {
				allowed[id] = true
			}
			for id, a := range testAccounts {
				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				req.Header.Set("Authorization", bearer(t, tokens, a))
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				want := http.StatusForbidden
				if allowed[id] {
					want = http.StatusOK
				}
				assert.Equal(t, want, w.Code, "account %s", a.Username)
			}
		})
	}
}

func TestRequireAuthRejects(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	r := newTestRouter(tokens, models.RoleUser)

	for name, header := range map[string]string{
		"no credentials":    "",
		"not bearer":        "Basic dXNlcjpwYXNz",
		"garbage token":     "Bearer abc.def.ghi",
		"deleted account":   bearer(t, tokens, models.Account{ID: 99, Role: models.RoleAdmin}),
		"foreign signature": bearer(t, NewTokenIssuer("other", time.Hour), testAccounts[1]),
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestSessionCookieAuth(t *testing.T) {
	r := newTestRouter(NewTokenIssuer("secret", time.Hour), models.RoleManager)

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login/2", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manager", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter(NewTokenIssuer("secret", time.Hour), models.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}
