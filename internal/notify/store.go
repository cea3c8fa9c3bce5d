package notify

import (
	"context"
	"errors"
	"fmt"

	"reward-admin/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

// Store keeps in-app notifications in the notifications table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Notify(ctx context.Context, msg Message) error {
	if msg.AccountID == 0 {
		return nil
	}
	row := models.Notification{
		AccountID: msg.AccountID,
		Title:     msg.Title,
		Message:   msg.Body,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, accountID uint, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("account_id = ?", accountID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at desc, id desc").Limit(100).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead only touches notifications owned by accountID.
func (s *Store) MarkRead(ctx context.Context, accountID, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND account_id = ?", id, accountID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
