package server

import (
	"net/http"
	"time"

	"reward-admin/internal/config"
	"reward-admin/internal/handlers"
	"reward-admin/internal/middleware"
	"reward-admin/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "reward_session"

func NewRouter(cfg *config.Config, h *handlers.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.JWTExpiration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	auth := api.Group("")
	auth.Use(middleware.RequireAuth(h.Tokens, h.Accounts))

	user := middleware.RequireRole(models.RoleUser)
	manager := middleware.RequireRole(models.RoleManager)
	admin := middleware.RequireRole(models.RoleAdmin)
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	auth.GET("/auth/me", user, h.Me)
	auth.PUT("/auth/password", user, h.ChangePassword)

	// TAXONOMIES
	auth.GET("/units", user, h.ListUnits)
	auth.POST("/units", admin, h.CreateUnit)
	auth.PUT("/units/:id", admin, h.UpdateUnit)
	auth.DELETE("/units/:id", admin, h.DeleteUnit)

	auth.GET("/positions", user, h.ListPositions)
	auth.POST("/positions", admin, h.CreatePosition)
	auth.PUT("/positions/:id", admin, h.UpdatePosition)
	auth.DELETE("/positions/:id", admin, h.DeletePosition)

	auth.GET("/contribution-groups", user, h.ListContributionGroups)
	auth.POST("/contribution-groups", admin, h.CreateContributionGroup)
	auth.PUT("/contribution-groups/:id", admin, h.UpdateContributionGroup)
	auth.DELETE("/contribution-groups/:id", admin, h.DeleteContributionGroup)

	// PERSONNEL
	auth.GET("/personnel", manager, h.ListPersonnel)
	auth.GET("/personnel/export", manager, h.ExportPersonnel)
	auth.GET("/personnel/:id", manager, h.GetPersonnel)
	auth.POST("/personnel", admin, h.CreatePersonnel)
	auth.PUT("/personnel/:id", admin, h.UpdatePersonnel)
	auth.DELETE("/personnel/:id", admin, h.DeletePersonnel)

	// RECALCULATION
	auth.POST("/personnel/recalculate", admin, h.RecalculateAll)
	auth.POST("/personnel/:id/recalculate", admin, h.RecalculateOne)
	auth.GET("/recalculations", admin, h.ListRecalculations)

	// PROPOSALS
	auth.GET("/proposals", manager, h.ListProposals)
	auth.GET("/proposals/:id", manager, h.GetProposal)
	auth.POST("/proposals", manager, h.SubmitProposal)
	auth.POST("/proposals/:id/approve", admin, h.ApproveProposal)
	auth.POST("/proposals/:id/reject", admin, h.RejectProposal)

	// AUDIT
	auth.GET("/audit-logs", admin, h.ListAuditLogs)

	// ACCOUNTS
	auth.GET("/accounts", superAdmin, h.ListAccounts)
	auth.POST("/accounts", superAdmin, h.CreateAccount)
	auth.DELETE("/accounts/:id", superAdmin, h.DeleteAccount)

	// NOTIFICATIONS
	auth.GET("/notifications", user, h.ListNotifications)
	auth.POST("/notifications/:id/read", user, h.MarkNotificationRead)

	return r
}
