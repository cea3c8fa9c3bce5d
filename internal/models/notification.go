package models

import "time"

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AccountID uint   `gorm:"index;not null" json:"account_id"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Message   string `gorm:"type:text" json:"message"`
	IsRead    bool   `gorm:"not null;default:false" json:"read"`
}
