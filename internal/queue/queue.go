// Package queue is a database-backed deferred task queue. Tasks become
// deliverable at available_at; workers claim them with a compare-and-
// swap update, so each task is delivered to at most one worker at a
// time.
package queue

import (
	"context"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const claimBatchSize = 64

type Queue interface {
	WithDatabase(*gorm.DB) Queue
	EnqueueAdmission(*EnqueueRequest) (*models.Task, error)
	ClaimNext(nodeID string) (*models.Task, error)
	Defer(task *models.Task, delay time.Duration, attempt int) error
	Complete(id uuid.UUID) error
	Fail(id uuid.UUID, reason string) error
}

type queueService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Queue {
	return &queueService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (q *queueService) WithDatabase(conn *gorm.DB) Queue {
	q.db = conn
	return q
}

type EnqueueRequest struct {
	OrgID       int64
	RunID       int64
	NodeType    models.NodeType
	MaxAttempts int
	AvailableAt time.Time
}

// EnqueueAdmission queues an admission check for a run. A zero
// AvailableAt makes the task deliverable immediately.
func (q *queueService) EnqueueAdmission(req *EnqueueRequest) (*models.Task, error) {
	availableAt := req.AvailableAt
	if availableAt.IsZero() {
		availableAt = time.Now().UTC()
	}

	task := &models.Task{
		ID:          uuid.New(),
		OrgID:       req.OrgID,
		Kind:        models.TaskKindAdmission,
		RunID:       req.RunID,
		NodeType:    req.NodeType,
		MaxAttempts: req.MaxAttempts,
		Status:      models.TaskStatusPending,
		AvailableAt: availableAt,
	}

	return task, q.db.WithContext(q.ctx).Create(task).Error
}

// ClaimNext claims one due task, or returns nil when none are due.
func (q *queueService) ClaimNext(nodeID string) (*models.Task, error) {
	now := time.Now().UTC()

	var candidates []models.Task
	err := q.db.WithContext(q.ctx).
		Where("status = ? AND available_at <= ?", models.TaskStatusPending, now).
		Order("available_at ASC").
		Limit(claimBatchSize).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidate := &candidates[i]

		result := q.db.WithContext(q.ctx).
			Model(&models.Task{}).
			Where("id = ? AND status = ?", candidate.ID, models.TaskStatusPending).
			Updates(map[string]interface{}{
				"status":     models.TaskStatusRunning,
				"claimed_by": nodeID,
			})
		if result.Error != nil {
			return nil, result.Error
		}

		if result.RowsAffected == 0 {
			// Another node won the race.
			metrics.WorkerClaimContentionTotal.WithLabelValues(nodeID).Inc()
			continue
		}

		claimed := &models.Task{}
		if err := q.db.WithContext(q.ctx).First(claimed, "id = ?", candidate.ID).Error; err != nil {
			return nil, err
		}

		metrics.WorkerClaimsTotal.WithLabelValues(nodeID).Inc()

		return claimed, nil
	}

	return nil, nil
}

// Defer re-enqueues a claimed task for a later delivery with an
// updated attempt count.
func (q *queueService) Defer(task *models.Task, delay time.Duration, attempt int) error {
	return q.db.WithContext(q.ctx).
		Model(&models.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusPending,
			"claimed_by":   "",
			"attempt":      attempt,
			"available_at": time.Now().UTC().Add(delay),
		}).Error
}

func (q *queueService) Complete(id uuid.UUID) error {
	return q.db.WithContext(q.ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", models.TaskStatusSucceeded).Error
}

func (q *queueService) Fail(id uuid.UUID, reason string) error {
	return q.db.WithContext(q.ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": models.TaskStatusFailed,
			"error":  reason,
		}).Error
}
