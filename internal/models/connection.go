package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConnectionDirection indicates which side of a data movement a
// connection can serve.
type ConnectionDirection string

const (
	ConnectionDirectionSource      ConnectionDirection = "source"
	ConnectionDirectionDestination ConnectionDirection = "destination"
	ConnectionDirectionBoth        ConnectionDirection = "both"
)

// Readable reports whether the connection can act as a source.
func (d ConnectionDirection) Readable() bool {
	return d == ConnectionDirectionSource || d == ConnectionDirectionBoth
}

// Writable reports whether the connection can act as a destination.
func (d ConnectionDirection) Writable() bool {
	return d == ConnectionDirectionDestination || d == ConnectionDirectionBoth
}

// Connection is a configured data source or destination. Config holds
// the engine-specific settings; credentials inside it are encrypted by
// the caller before persistence.
type Connection struct {
	ID        int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID     int64               `gorm:"index;not null" json:"org_id"`
	Name      string              `gorm:"not null" json:"name"`
	Type      string              `gorm:"type:text;not null" json:"type"`
	Direction ConnectionDirection `gorm:"type:text;not null" json:"direction"`
	Config    datatypes.JSONMap   `gorm:"type:json" json:"config,omitempty"`
	CreatedAt time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time           `gorm:"not null" json:"updated_at"`
	DeletedAt *time.Time          `gorm:"index" json:"deleted_at,omitempty"`
}

type Connections []*Connection
