package handlers

import (
	"net/http"
	"time"

	"reward-admin/internal/middleware"
	"reward-admin/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   models.Account `json:"account"`
}

// Login issues a bearer token and also opens a console session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	account, err := h.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, expires, err := h.Tokens.Issue(*account)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := middleware.StartSession(c, account.ID); err != nil {
		h.Log.Warn("failed to save session", zap.Uint("account_id", account.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, Account: *account})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := middleware.EndSession(c); err != nil {
		h.Log.Warn("failed to clear session", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, actor(c))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "current_password and new_password are required")
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), actor(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
