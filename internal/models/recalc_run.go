package models

import "time"

type RecalcRunStatus string

const (
	RecalcRunning   RecalcRunStatus = "RUNNING"
	RecalcSucceeded RecalcRunStatus = "SUCCEEDED"
	RecalcFailed    RecalcRunStatus = "FAILED"
)

// RecalcRun records one execution of the profile recalculation job.
type RecalcRun struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Trigger      string          `gorm:"size:50;not null" json:"trigger"`
	Status       RecalcRunStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at"`
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
	Error        string          `gorm:"type:text" json:"error,omitempty"`
}
