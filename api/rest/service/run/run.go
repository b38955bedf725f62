package run

import (
	"context"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/event"
	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/gorm"
)

// Run is the ledger of execution attempts. The freshness gate reads
// it; the admission controller writes to it only on retry exhaustion.
type Run interface {
	WithDatabase(*gorm.DB) Run
	Create(*CreateRequest) (*models.Run, error)
	Get(orgID, id int64) (*models.Run, error)
	GetByID(id int64) (*models.Run, error)
	List(*ListRequest) (models.Runs, error)
	Start(id int64) (*models.Run, error)
	Complete(id int64, rowsLoaded int64, logs string) (*models.Run, error)
	Fail(id int64, errorMessage, logs string) (*models.Run, error)
	Cancel(id int64) (*models.Run, error)
	FreshSuccessExists(orgID int64, node models.NodeRef, cutoff time.Time) (bool, error)
}

type runService struct {
	ctx context.Context
	db  *gorm.DB
	bus event.Bus
}

func Service(ctx context.Context) Run {
	return &runService{
		ctx: ctx,
		db:  db.Connection(),
		bus: event.Default(),
	}
}

func (r *runService) WithDatabase(conn *gorm.DB) Run {
	r.db = conn
	return r
}

type CreateRequest struct {
	OrgID      int64           `json:"org_id"`
	TargetType models.NodeType `json:"target_type"`
	TargetID   int64           `json:"target_id"`
}

func (r *runService) Create(req *CreateRequest) (*models.Run, error) {
	run := &models.Run{
		OrgID:      req.OrgID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Status:     models.RunStatusPending,
	}

	if err := r.db.WithContext(r.ctx).Create(run).Error; err != nil {
		return nil, err
	}

	r.publish(event.TypeRunCreated, run)

	return run, nil
}

func (r *runService) Get(orgID, id int64) (*models.Run, error) {
	var run models.Run

	err := r.db.WithContext(r.ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&run).Error
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// GetByID looks a run up without org scoping. Only task-queue
// internals, which carry the org id inside the task row, use it.
func (r *runService) GetByID(id int64) (*models.Run, error) {
	var run models.Run

	err := r.db.WithContext(r.ctx).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &run, nil
}

type ListRequest struct {
	OrgID      int64
	TargetType models.NodeType
	TargetID   int64
	Status     models.RunStatus
	Limit      uint64
}

func (r *runService) List(req *ListRequest) (models.Runs, error) {
	var (
		runs = make(models.Runs, 0)
		q    = r.db.WithContext(r.ctx).
			Where("org_id = ?", req.OrgID).
			Order("created_at DESC")
	)

	if req.TargetType != "" {
		q = q.Where("target_type = ?", req.TargetType)
	}

	if req.TargetID != 0 {
		q = q.Where("target_id = ?", req.TargetID)
	}

	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	return runs, q.Find(&runs).Error
}

var terminalStatuses = []models.RunStatus{
	models.RunStatusSuccess,
	models.RunStatusFailed,
	models.RunStatusCancelled,
}

// transition applies updates to the run only while it is non-terminal,
// with the same compare-and-swap shape the task queue uses for claims.
// A finished run is immutable: a late or duplicate delivery gets
// gorm.ErrRecordNotFound instead of rewriting the outcome.
func (r *runService) transition(id int64, updates map[string]interface{}) (*models.Run, error) {
	result := r.db.WithContext(r.ctx).
		Model(&models.Run{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByID(id)
}

func (r *runService) Start(id int64) (*models.Run, error) {
	run, err := r.transition(id, map[string]interface{}{
		"status":     models.RunStatusRunning,
		"started_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	r.publish(event.TypeRunStarted, run)

	return run, nil
}

func (r *runService) Complete(id int64, rowsLoaded int64, logs string) (*models.Run, error) {
	run, err := r.transition(id, map[string]interface{}{
		"status":      models.RunStatusSuccess,
		"finished_at": time.Now().UTC(),
		"rows_loaded": rowsLoaded,
		"logs":        logs,
	})
	if err != nil {
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues(string(run.TargetType), string(run.Status)).Inc()
	r.publish(event.TypeRunSucceeded, run)

	return run, nil
}

func (r *runService) Fail(id int64, errorMessage, logs string) (*models.Run, error) {
	run, err := r.transition(id, map[string]interface{}{
		"status":        models.RunStatusFailed,
		"finished_at":   time.Now().UTC(),
		"error_message": errorMessage,
		"logs":          logs,
	})
	if err != nil {
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues(string(run.TargetType), string(run.Status)).Inc()
	r.publish(event.TypeRunFailed, run)

	return run, nil
}

// Cancel transitions a run to cancelled; only pending or running runs
// can be cancelled.
func (r *runService) Cancel(id int64) (*models.Run, error) {
	run, err := r.transition(id, map[string]interface{}{
		"status":      models.RunStatusCancelled,
		"finished_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues(string(run.TargetType), string(run.Status)).Inc()
	r.publish(event.TypeRunCancelled, run)

	return run, nil
}

// FreshSuccessExists reports whether the node has a SUCCESS run that
// finished at or after the cutoff. The boundary is inclusive.
func (r *runService) FreshSuccessExists(orgID int64, node models.NodeRef, cutoff time.Time) (bool, error) {
	var count int64

	err := r.db.WithContext(r.ctx).
		Model(&models.Run{}).
		Where(
			"org_id = ? AND target_type = ? AND target_id = ? AND status = ? AND finished_at >= ?",
			orgID,
			node.Type,
			node.ID,
			models.RunStatusSuccess,
			cutoff,
		).
		Count(&count).Error

	return count > 0, err
}

func (r *runService) publish(t event.Type, run *models.Run) {
	if r.bus == nil {
		return
	}

	r.bus.Publish(event.Event{
		Type:  t,
		OrgID: run.OrgID,
		RunID: run.ID,
		Node:  run.Target(),
	})
}
