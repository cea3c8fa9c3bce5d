package models

import "time"

// ContributionGroup classifies positions for reward eligibility.
type ContributionGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// percentage bonus applied to contribution scores of holders
	Weight int `gorm:"not null;default:0" json:"weight"`
}

type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Code        string `gorm:"size:32" json:"code"`
	Description string `gorm:"type:text" json:"description"`
}

type Position struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name                string             `gorm:"uniqueIndex;size:255;not null" json:"name"`
	ContributionGroupID *uint              `json:"contribution_group_id"`
	ContributionGroup   *ContributionGroup `json:"contribution_group,omitempty"`
}
