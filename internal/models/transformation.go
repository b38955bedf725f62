package models

import "time"

// Materialization is how a transformation's result is persisted.
type Materialization string

const (
	MaterializationView  Materialization = "view"
	MaterializationTable Materialization = "table"
)

// Valid reports whether m is a known materialization.
func (m Materialization) Valid() bool {
	return m == MaterializationView || m == MaterializationTable
}

// Transformation is a SQL model built against a destination warehouse.
type Transformation struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID           int64           `gorm:"index;not null" json:"org_id"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description,omitempty"`
	SQLBody         string          `gorm:"not null" json:"sql_body"`
	Materialization Materialization `gorm:"type:text;not null" json:"materialization"`
	SchemaName      string          `gorm:"not null;default:staging" json:"schema_name"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt       *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

type Transformations []*Transformation
