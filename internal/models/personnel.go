package models

import (
	"time"

	"gorm.io/gorm"
)

const NationalIDLength = 12

// Profile holds the fields derived from a person's service and reward history.
// Only the recalculation job writes them.
type Profile struct {
	ServiceMonths             int        `json:"service_months"`
	AwardTotal                int        `json:"award_total"`
	AchievementTotal          int        `json:"achievement_total"`
	ContributionScore         int        `json:"contribution_score"`
	ConsecutiveEmulationYears int        `json:"consecutive_emulation_years"`
	EligibleMeritCertificate  bool       `json:"eligible_merit_certificate"`
	GloriousSoldierRank       MedalRank  `gorm:"type:varchar(20)" json:"glorious_soldier_rank"`
	RecalculatedAt            *time.Time `json:"recalculated_at"`
}

type MedalRank string

const (
	MedalRankNone   MedalRank = ""
	MedalRankThird  MedalRank = "HANG_BA"
	MedalRankSecond MedalRank = "HANG_NHI"
	MedalRankFirst  MedalRank = "HANG_NHAT"
)

type Personnel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	NationalID     string    `gorm:"size:12;uniqueIndex;not null" json:"national_id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	BirthDate      time.Time `json:"birth_date"`
	EnlistmentDate time.Time `json:"enlistment_date"`

	UnitID     uint      `gorm:"index" json:"unit_id"`
	Unit       *Unit     `json:"unit,omitempty"`
	PositionID uint      `gorm:"index" json:"position_id"`
	Position   *Position `json:"position,omitempty"`

	Profile Profile `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`

	Achievements []Achievement `json:"achievements,omitempty"`
}

func (Personnel) TableName() string { return "personnel" }
