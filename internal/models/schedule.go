package models

import "time"

// Schedule fires runs for a target node on a cron expression.
type Schedule struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID          int64      `gorm:"index;not null" json:"org_id"`
	TargetType     NodeType   `gorm:"type:text;not null" json:"target_type"`
	TargetID       int64      `gorm:"not null" json:"target_id"`
	CronExpression string     `gorm:"not null" json:"cron_expression"`
	Timezone       string     `gorm:"not null;default:UTC" json:"timezone"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

type Schedules []*Schedule

// Target returns the node this schedule fires.
func (s *Schedule) Target() NodeRef {
	return NodeRef{Type: s.TargetType, ID: s.TargetID}
}
