package server

import (
	"reward-admin/internal/audit"
	"reward-admin/internal/config"
	"reward-admin/internal/handlers"
	"reward-admin/internal/middleware"
	"reward-admin/internal/notify"
	"reward-admin/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the wired application: services, handlers and the router.
type App struct {
	Router  *gin.Engine
	Handler *handlers.Handler
	Recalc  *service.RecalcService

	mail *notify.Async
}

const mailQueueSize = 256

// newNotifier always delivers in-app; e-mail is added only when SMTP is
// configured and goes through a background queue.
func newNotifier(cfg config.SMTPConfig, store *notify.Store, log *zap.Logger) (notify.Multi, *notify.Async) {
	notifier := notify.Multi{store}
	m := notify.NewMailer(cfg)
	if m == nil {
		log.Info("smtp not configured, e-mail notifications disabled")
		return notifier, nil
	}
	queue := notify.NewAsync(m, log, mailQueueSize)
	return append(notifier, queue), queue
}

func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *App {
	auditLog := audit.NewLogger(db, log)
	store := notify.NewStore(db)
	notifier, mail := newNotifier(cfg.SMTP, store, log)

	recalc := service.NewRecalcService(db, auditLog, log, cfg.Recalc.Workers)
	h := &handlers.Handler{
		Accounts:      service.NewAccountService(db, auditLog),
		Taxonomy:      service.NewTaxonomyService(db, auditLog),
		Personnel:     service.NewPersonnelService(db, auditLog),
		Proposals:     service.NewProposalService(db, auditLog, notifier, log),
		Recalc:        recalc,
		Audit:         auditLog,
		Notifications: store,
		Tokens:        middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration),
		Log:           log.Named("api"),
	}

	return &App{
		Router:  NewRouter(cfg, h, log),
		Handler: h,
		Recalc:  recalc,
		mail:    mail,
	}
}

// Close flushes queued e-mail notifications.
func (a *App) Close() {
	a.mail.Close()
}
