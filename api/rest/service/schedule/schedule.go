package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"github.com/robfig/cron"
	"gorm.io/gorm"
)

type Schedule interface {
	WithDatabase(*gorm.DB) Schedule
	List(*ListRequest) (models.Schedules, error)
	ListActive() (models.Schedules, error)
	Get(orgID, id int64) (*models.Schedule, error)
	Create(*CreateRequest) (*models.Schedule, error)
	SetActive(orgID, id int64, active bool) (bool, error)
	Delete(orgID, id int64) (bool, error)
}

type scheduleService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Schedule {
	return &scheduleService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (s *scheduleService) WithDatabase(conn *gorm.DB) Schedule {
	s.db = conn
	return s
}

type ListRequest struct {
	OrgID  int64
	Limit  uint64
	Offset uint64
}

func (s *scheduleService) List(req *ListRequest) (models.Schedules, error) {
	var (
		schedules = make(models.Schedules, 0)
		q         = s.db.WithContext(s.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return schedules, q.Find(&schedules).Error
}

// ListActive returns the active schedules across all organizations.
// The in-process scheduler uses it on startup and on its resync tick.
func (s *scheduleService) ListActive() (models.Schedules, error) {
	schedules := make(models.Schedules, 0)

	err := s.db.WithContext(s.ctx).
		Where("is_active = ? AND deleted_at IS NULL", true).
		Find(&schedules).Error

	return schedules, err
}

func (s *scheduleService) Get(orgID, id int64) (*models.Schedule, error) {
	var schedule models.Schedule

	err := s.db.WithContext(s.ctx).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}

type CreateRequest struct {
	OrgID          int64           `json:"org_id"`
	TargetType     models.NodeType `json:"target_type"`
	TargetID       int64           `json:"target_id"`
	CronExpression string          `json:"cron_expression"`
	Timezone       string          `json:"timezone"`
}

func (s *scheduleService) Create(req *CreateRequest) (*models.Schedule, error) {
	if !req.TargetType.Valid() {
		return nil, fmt.Errorf("unknown node type: %q", req.TargetType)
	}

	if _, err := Parse(req.CronExpression); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", req.CronExpression, err)
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	schedule := &models.Schedule{
		OrgID:          req.OrgID,
		TargetType:     req.TargetType,
		TargetID:       req.TargetID,
		CronExpression: req.CronExpression,
		Timezone:       timezone,
		IsActive:       true,
	}

	return schedule, s.db.WithContext(s.ctx).Create(schedule).Error
}

func (s *scheduleService) SetActive(orgID, id int64, active bool) (bool, error) {
	result := s.db.WithContext(s.ctx).
		Model(&models.Schedule{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("is_active", active)

	return result.RowsAffected > 0, result.Error
}

func (s *scheduleService) Delete(orgID, id int64) (bool, error) {
	now := time.Now().UTC()

	result := s.db.WithContext(s.ctx).
		Model(&models.Schedule{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)

	return result.RowsAffected > 0, result.Error
}

// Parse parses a five-field cron expression.
func Parse(expression string) (cron.Schedule, error) {
	parser := cron.NewParser(
		cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow,
	)

	return parser.Parse(expression)
}
