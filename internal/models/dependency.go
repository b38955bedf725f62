package models

import "time"

// TimeframeUnit is the unit of a dependency freshness requirement.
type TimeframeUnit string

const (
	TimeframeUnitMinutes TimeframeUnit = "minutes"
	TimeframeUnitHours   TimeframeUnit = "hours"
)

// Valid reports whether u is a known timeframe unit.
func (u TimeframeUnit) Valid() bool {
	return u == TimeframeUnitMinutes || u == TimeframeUnitHours
}

// Dependency is a directed "downstream requires upstream" edge between
// two nodes. An edge without a check timeframe is metadata-only: it
// records lineage but never gates execution.
type Dependency struct {
	ID                  int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID               int64          `gorm:"index;not null" json:"org_id"`
	UpstreamType        NodeType       `gorm:"type:text;not null" json:"upstream_type"`
	UpstreamID          int64          `gorm:"not null" json:"upstream_id"`
	DownstreamType      NodeType       `gorm:"type:text;not null" json:"downstream_type"`
	DownstreamID        int64          `gorm:"not null" json:"downstream_id"`
	CheckTimeframeValue *int           `json:"check_timeframe_value,omitempty"`
	CheckTimeframeUnit  *TimeframeUnit `gorm:"type:text" json:"check_timeframe_unit,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           *time.Time     `gorm:"index" json:"deleted_at,omitempty"`
}

type Dependencies []*Dependency

// Upstream returns the upstream side of the edge.
func (d *Dependency) Upstream() NodeRef {
	return NodeRef{Type: d.UpstreamType, ID: d.UpstreamID}
}

// Downstream returns the downstream side of the edge.
func (d *Dependency) Downstream() NodeRef {
	return NodeRef{Type: d.DownstreamType, ID: d.DownstreamID}
}

// Timeframe returns the freshness window of the edge, or false for
// metadata-only edges. The unit defaults to minutes when unset.
func (d *Dependency) Timeframe() (time.Duration, bool) {
	if d.CheckTimeframeValue == nil {
		return 0, false
	}

	unit := TimeframeUnitMinutes
	if d.CheckTimeframeUnit != nil {
		unit = *d.CheckTimeframeUnit
	}

	if unit == TimeframeUnitHours {
		return time.Duration(*d.CheckTimeframeValue) * time.Hour, true
	}

	return time.Duration(*d.CheckTimeframeValue) * time.Minute, true
}
