package models

import (
	"time"

	"gorm.io/datatypes"
)

// PipelineStatus enumerates the configuration states of a pipeline.
type PipelineStatus string

const (
	PipelineStatusDraft  PipelineStatus = "draft"
	PipelineStatusActive PipelineStatus = "active"
	PipelineStatusPaused PipelineStatus = "paused"
)

// Pipeline is a batch model-build job selecting a set of
// transformations to build against a destination connection.
type Pipeline struct {
	ID                      int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID                   int64             `gorm:"index;not null" json:"org_id"`
	Name                    string            `gorm:"not null" json:"name"`
	Description             string            `json:"description,omitempty"`
	DestinationConnectionID int64             `gorm:"not null" json:"destination_connection_id"`
	Models                  datatypes.JSONMap `gorm:"type:json" json:"models,omitempty"`
	Status                  PipelineStatus    `gorm:"type:text;not null;default:draft" json:"status"`
	CreatedAt               time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time         `gorm:"not null" json:"updated_at"`
	DeletedAt               *time.Time        `gorm:"index" json:"deleted_at,omitempty"`
}

type Pipelines []*Pipeline
