package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reward-admin/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ActionCreate      = "CREATE"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionSubmit      = "SUBMIT"
	ActionApprove     = "APPROVE"
	ActionReject      = "REJECT"
	ActionLogin       = "LOGIN"
	ActionRecalculate = "RECALCULATE"
)

const (
	ResourceUnits              = "UNITS"
	ResourcePositions          = "POSITIONS"
	ResourceContributionGroups = "CONTRIBUTION_GROUPS"
	ResourcePersonnel          = "PERSONNEL"
	ResourceProposals          = "PROPOSALS"
	ResourceAccounts           = "ACCOUNTS"
)

type Entry struct {
	ActorID     uint
	Action      string
	Resource    string
	ResourceID  uint
	Description string
}

// Logger writes audit entries. Record never fails the caller.
type Logger struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLogger(db *gorm.DB, log *zap.Logger) *Logger {
	return &Logger{db: db, log: log.Named("audit")}
}

// Record persists e and reports failures to the process log only.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if err := l.RecordErr(ctx, e); err != nil {
		l.log.Warn("audit entry dropped",
			zap.Error(err),
			zap.Uint("actor_id", e.ActorID),
			zap.String("action", e.Action),
			zap.String("resource", e.Resource),
			zap.Uint("resource_id", e.ResourceID))
	}
}

// RecordErr is Record for callers that need to know about the failure.
func (l *Logger) RecordErr(ctx context.Context, e Entry) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if e.Action == "" || e.Resource == "" {
		return errors.New("audit entry missing action or resource")
	}
	row := models.AuditLog{
		ActorID:     e.ActorID,
		Action:      e.Action,
		Resource:    e.Resource,
		ResourceID:  e.ResourceID,
		Description: e.Description,
	}
	return l.db.WithContext(ctx).Create(&row).Error
}

type Filter struct {
	ActorID  uint
	Action   string
	Resource string
	From, To *time.Time
	Page     int
	Limit    int
}

func (l *Logger) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.ActorID != 0 {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Resource != "" {
		q = q.Where("resource = ?", f.Resource)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	var logs []models.AuditLog
	err := q.Order("created_at desc, id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, nil
}
