package models

import "time"

type JobStatus string

const (
	JobStatusStarted   JobStatus = "STARTED"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// ReconcileJob makes job submissions idempotent per client-supplied key.
// Unique constraint: idempotency_key.
type ReconcileJob struct {
	ID             int       `gorm:"primary_key" json:"id"`
	IdempotencyKey string    `gorm:"size:255;not null;uniqueIndex" json:"idempotency_key"`
	Source         string    `gorm:"size:32;not null" json:"source"`
	Status         JobStatus `gorm:"size:20;not null;index" json:"status"`
	RunId          string    `gorm:"size:64" json:"run_id"`
	LastError      *string   `gorm:"type:text" json:"last_error"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
