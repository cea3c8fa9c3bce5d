package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reward-admin/internal/notify"
	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "rejection_reason", Message: "too short"}, http.StatusBadRequest},
		{"authorization", &service.AuthorizationError{Message: "other unit"}, http.StatusForbidden},
		{"not found", &service.NotFoundError{Resource: "proposal", ID: 7}, http.StatusNotFound},
		{"conflict", &service.ConflictError{Message: "already APPROVED"}, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("approve: %w", &service.ConflictError{Message: "x"}), http.StatusConflict},
		{"recalculation running", service.ErrRecalculationRunning, http.StatusConflict},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"notification missing", notify.ErrNotFound, http.StatusNotFound},
		{"anything else", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.respondError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.respondError(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := parseID(c, "id")
		assert.Equal(t, want, ok, "id %q", raw)
		if !want {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
