package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"reward-admin/internal/audit"
	"reward-admin/internal/middleware"
	"reward-admin/internal/models"
	"reward-admin/internal/notify"
	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler groups the JSON API endpoints and the services behind them.
type Handler struct {
	Accounts      *service.AccountService
	Taxonomy      *service.TaxonomyService
	Personnel     *service.PersonnelService
	Proposals     *service.ProposalService
	Recalc        *service.RecalcService
	Audit         *audit.Logger
	Notifications *notify.Store
	Tokens        *middleware.TokenIssuer
	Log           *zap.Logger
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without their details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
		notFound   *service.NotFoundError
		authz      *service.AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, gin.H{"error": authz.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, service.ErrRecalculationRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, notify.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	_ = c.Error(err)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func pageFrom(c *gin.Context) service.Page {
	return service.Page{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}
}

// actor is only called behind RequireAuth.
func actor(c *gin.Context) models.Account {
	a, _ := middleware.CurrentAccount(c)
	return a
}

type listResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func paged(data interface{}, total int64, p service.Page) listResponse {
	p = p.Normalized()
	return listResponse{Data: data, Total: total, Page: p.Page, Limit: p.Limit}
}
