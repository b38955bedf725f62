package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates the states of a queued task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskKind enumerates the work a queued task carries.
type TaskKind string

const (
	// TaskKindAdmission gates a pending run behind its upstream
	// dependencies before execution starts.
	TaskKindAdmission TaskKind = "admission"
)

// Task is one deferred unit of work on the distributed queue. Each
// admission check executes as one task; a retry is a fresh task
// delivery after AvailableAt, not an in-process wait.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       int64      `gorm:"index;not null" json:"org_id"`
	Kind        TaskKind   `gorm:"type:text;not null" json:"kind"`
	RunID       int64      `gorm:"index;not null" json:"run_id"`
	NodeType    NodeType   `gorm:"type:text;not null" json:"node_type"`
	Attempt     int        `gorm:"not null;default:0" json:"attempt"`
	MaxAttempts int        `gorm:"not null" json:"max_attempts"`
	Status      TaskStatus `gorm:"type:text;index;not null" json:"status"`
	AvailableAt time.Time  `gorm:"index;not null" json:"available_at"`
	ClaimedBy   string     `gorm:"type:text;not null;default:''" json:"claimed_by"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

type Tasks []*Task
