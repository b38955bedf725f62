// Package worker drives the task queue: it claims due tasks, runs the
// admission check for each, and executes the resulting decision.
package worker

import (
	"context"
	"strings"
	"time"

	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/fluxline-cloud/fluxline/internal/admission"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/internal/queue"
	"github.com/fluxline-cloud/fluxline/internal/runner"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"gorm.io/gorm"
)

const defaultPollInterval = time.Second

type Worker struct {
	nodeID       string
	db           *gorm.DB
	pool         *Pool
	pollInterval time.Duration
	retryDelay   time.Duration
	maxRetries   int
	engine       runner.Runner
}

type Config struct {
	NodeID       string
	Concurrency  int
	PollInterval time.Duration
	RetryDelay   time.Duration
	MaxRetries   int
	Engine       runner.Runner
}

func New(conn *gorm.DB, cfg Config) *Worker {
	nodeID := strings.TrimSpace(cfg.NodeID)
	if nodeID == "" {
		nodeID = "unknown-node"
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	engine := cfg.Engine
	if engine == nil {
		engine = runner.NoOp()
	}

	return &Worker{
		nodeID:       nodeID,
		db:           conn,
		pool:         NewPool(cfg.Concurrency),
		pollInterval: pollInterval,
		retryDelay:   cfg.RetryDelay,
		maxRetries:   cfg.MaxRetries,
		engine:       engine,
	}
}

// Run polls the queue until the context is cancelled. It blocks.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer w.pool.Wait()

	for {
		select {
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				log.Error("worker drain failure", "node_id", w.nodeID, "error", err)
			}
		case <-ctx.Done():
			log.Info(
				"worker stopping",
				"node_id", w.nodeID,
				"in_flight", w.pool.InFlight(),
			)
			return nil
		}
	}
}

// drain claims and dispatches tasks until the queue has no more due
// work or the context ends.
func (w *Worker) drain(ctx context.Context) error {
	for {
		task, err := queue.Service(ctx).WithDatabase(w.db).ClaimNext(w.nodeID)
		if err != nil {
			return err
		}

		if task == nil {
			return nil
		}

		if err := w.pool.Submit(ctx, func() { w.handle(ctx, task) }); err != nil {
			return err
		}
	}
}

func (w *Worker) handle(ctx context.Context, task *models.Task) {
	switch task.Kind {
	case models.TaskKindAdmission:
		w.handleAdmission(ctx, task)
	default:
		log.Warn("unknown task kind", "task_id", task.ID, "kind", task.Kind)
		w.failTask(ctx, task, "unknown task kind")
	}
}

func (w *Worker) handleAdmission(ctx context.Context, task *models.Task) {
	controller := admission.NewController(ctx, w.db).
		WithRetryPolicy(w.retryDelay, w.maxRetries)

	decision, err := controller.Admit(&admission.Request{
		RunID:    task.RunID,
		OrgID:    task.OrgID,
		NodeType: task.NodeType,
		Attempt:  task.Attempt,
	})
	if err != nil {
		log.Error(
			"admission check failure",
			"task_id", task.ID,
			"run_id", task.RunID,
			"error", err,
		)
		w.failTask(ctx, task, err.Error())
		return
	}

	q := queue.Service(ctx).WithDatabase(w.db)

	switch decision.Kind {
	case admission.KindProceed:
		w.execute(ctx, task)

	case admission.KindRetry:
		if err := q.Defer(task, decision.Delay, decision.Attempt); err != nil {
			log.Error("task defer failure", "task_id", task.ID, "error", err)
		}

	case admission.KindFail:
		// The controller already failed the run; surface the
		// exhaustion on the task as well so queue monitoring sees it.
		w.failTask(ctx, task, decision.Reason)

	case admission.KindSkip:
		if err := q.Complete(task.ID); err != nil {
			log.Error("task complete failure", "task_id", task.ID, "error", err)
		}
	}
}

// execute starts the admitted run, hands it to the engine, and
// records the outcome in the run ledger.
func (w *Worker) execute(ctx context.Context, task *models.Task) {
	runs := runsvc.Service(ctx).WithDatabase(w.db)

	run, err := runs.Start(task.RunID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// The run vanished or turned terminal since admission;
			// the task is stale.
			log.Warn("run no longer startable", "run_id", task.RunID)
			if cerr := queue.Service(ctx).WithDatabase(w.db).Complete(task.ID); cerr != nil {
				log.Error("task complete failure", "task_id", task.ID, "error", cerr)
			}
			return
		}
		log.Error("run start failure", "run_id", task.RunID, "error", err)
		w.failTask(ctx, task, err.Error())
		return
	}

	result, err := w.engine.Run(ctx, run)
	if err != nil {
		if _, ferr := runs.Fail(run.ID, err.Error(), err.Error()); ferr != nil {
			log.Error("run fail write failure", "run_id", run.ID, "error", ferr)
		}
		w.failTask(ctx, task, err.Error())
		return
	}

	if _, err = runs.Complete(run.ID, result.RowsLoaded, result.Logs); err != nil {
		log.Error("run complete write failure", "run_id", run.ID, "error", err)
		w.failTask(ctx, task, err.Error())
		return
	}

	if err = queue.Service(ctx).WithDatabase(w.db).Complete(task.ID); err != nil {
		log.Error("task complete failure", "task_id", task.ID, "error", err)
	}
}

func (w *Worker) failTask(ctx context.Context, task *models.Task, reason string) {
	if err := queue.Service(ctx).WithDatabase(w.db).Fail(task.ID, reason); err != nil {
		log.Error("task fail write failure", "task_id", task.ID, "error", err)
	}
}
