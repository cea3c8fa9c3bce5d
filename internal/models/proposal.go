package models

import "time"

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "PENDING"
	ProposalApproved ProposalStatus = "APPROVED"
	ProposalRejected ProposalStatus = "REJECTED"
)

type Proposal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UnitID        uint     `gorm:"index;not null" json:"unit_id"`
	Unit          *Unit    `json:"unit,omitempty"`
	SubmittedByID uint     `gorm:"not null" json:"submitted_by"`
	SubmittedBy   *Account `json:"submitter,omitempty"`

	Title            string         `gorm:"size:255" json:"title"`
	Status           ProposalStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AwardCount       int            `json:"award_count"`
	AchievementCount int            `json:"achievement_count"`

	// set together when the proposal leaves PENDING
	ApprovedByID    *uint      `json:"approved_by"`
	ApprovedBy      *Account   `json:"approver,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`

	Items []ProposalItem `json:"items,omitempty"`
}

type ProposalItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProposalID uint `gorm:"index;not null" json:"proposal_id"`

	PersonnelID uint       `gorm:"not null" json:"personnel_id"`
	Personnel   *Personnel `json:"personnel,omitempty"`
	Kind        RewardKind `gorm:"type:varchar(20);not null" json:"kind"`
	Type        string     `gorm:"size:50;not null" json:"type"`
	Year        int        `gorm:"not null" json:"year"`
	Note        string     `gorm:"type:text" json:"note"`
}
