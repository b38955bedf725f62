package models

import "time"

// RunStatus enumerates the lifecycle states of a run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSuccess   RunStatus = "success"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a terminal state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusSuccess, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run is one execution attempt of a node.
type Run struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID        int64      `gorm:"index;not null" json:"org_id"`
	TargetType   NodeType   `gorm:"type:text;index;not null" json:"target_type"`
	TargetID     int64      `gorm:"index;not null" json:"target_id"`
	Status       RunStatus  `gorm:"type:text;index;not null" json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Logs         string     `json:"logs,omitempty"`
	RowsLoaded   *int64     `json:"rows_loaded,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

type Runs []*Run

// Target returns the node this run executes.
func (r *Run) Target() NodeRef {
	return NodeRef{Type: r.TargetType, ID: r.TargetID}
}
