package models

import (
	"time"

	"gorm.io/datatypes"
)

// Upload is a data-ingestion job definition moving data from a source
// connection into a destination connection.
type Upload struct {
	ID                      int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID                   int64             `gorm:"index;not null" json:"org_id"`
	Name                    string            `gorm:"not null" json:"name"`
	Description             string            `json:"description,omitempty"`
	SourceConnectionID      int64             `gorm:"not null" json:"source_connection_id"`
	DestinationConnectionID int64             `gorm:"not null" json:"destination_connection_id"`
	Config                  datatypes.JSONMap `gorm:"type:json" json:"config,omitempty"`
	CreatedAt               time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time         `gorm:"not null" json:"updated_at"`
	DeletedAt               *time.Time        `gorm:"index" json:"deleted_at,omitempty"`
}

type Uploads []*Upload
