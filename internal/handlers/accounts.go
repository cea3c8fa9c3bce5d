package handlers

import (
	"net/http"

	"reward-admin/internal/models"
	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type createAccountRequest struct {
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
	Email    string      `json:"email"`
	UnitID   *uint       `json:"unit_id"`
}

func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.Accounts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, password and role are required")
		return
	}
	a, err := h.Accounts.Create(c.Request.Context(), actor(c), service.AccountInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Email:    req.Email,
		UnitID:   req.UnitID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Accounts.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
