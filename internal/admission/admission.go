// Package admission gates a pending run behind its upstream
// dependencies. Each admission check is one discrete unit of work on a
// queue worker: a retry is a fresh task delivery after a fixed delay,
// never an in-process wait, so no worker blocks on upstream freshness.
package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/fluxline-cloud/fluxline/internal/event"
	"github.com/fluxline-cloud/fluxline/internal/gate"
	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"gorm.io/gorm"
)

const (
	// DefaultRetryDelay is how long an unsatisfied run waits before
	// its next admission check.
	DefaultRetryDelay = 60 * time.Second

	// DefaultMaxRetries is the admission retry budget per run.
	DefaultMaxRetries = 5
)

// Kind is the outcome of one admission check.
type Kind string

const (
	// KindProceed means every gated dependency is satisfied; the
	// caller starts execution.
	KindProceed Kind = "proceed"

	// KindRetry means the gate is unsatisfied but budget remains;
	// the caller re-enqueues the check after Delay. Routine control
	// flow, not an error.
	KindRetry Kind = "retry"

	// KindFail means the retry budget is exhausted; the run has
	// already been marked failed.
	KindFail Kind = "fail"

	// KindSkip means the run no longer exists or has already reached
	// a terminal state; nothing to do.
	KindSkip Kind = "skip"
)

// Decision is the explicit result of an admission check, consumed by
// the queue worker via a switch.
type Decision struct {
	Kind        Kind
	Delay       time.Duration
	Attempt     int
	Reason      string
	Unsatisfied []models.NodeRef
}

// Request identifies the run under admission. Attempt is the number of
// checks already spent on this run.
type Request struct {
	RunID    int64
	OrgID    int64
	NodeType models.NodeType
	Attempt  int
}

// Controller evaluates admission checks against a borrowed database
// handle. Use Admit for the owned-handle entry point.
type Controller struct {
	ctx        context.Context
	db         *gorm.DB
	retryDelay time.Duration
	maxRetries int
	bus        event.Bus
}

func NewController(ctx context.Context, conn *gorm.DB) *Controller {
	return &Controller{
		ctx:        ctx,
		db:         conn,
		retryDelay: DefaultRetryDelay,
		maxRetries: DefaultMaxRetries,
		bus:        event.Default(),
	}
}

// WithRetryPolicy overrides the fixed delay and retry budget.
func (c *Controller) WithRetryPolicy(delay time.Duration, maxRetries int) *Controller {
	if delay > 0 {
		c.retryDelay = delay
	}
	if maxRetries > 0 {
		c.maxRetries = maxRetries
	}
	return c
}

// Admit acquires its own database connection, evaluates the check,
// and guarantees the exhaustion-path write is committed before it
// returns. Callers holding a transaction use Controller.Admit so the
// write shares their boundary.
func Admit(ctx context.Context, req *Request) (Decision, error) {
	return NewController(ctx, db.Connection()).Admit(req)
}

// Admit evaluates one admission check. It writes to the run ledger
// only on retry exhaustion; every other outcome is read-only.
func (c *Controller) Admit(req *Request) (Decision, error) {
	runs := runsvc.Service(c.ctx).WithDatabase(c.db)

	run, err := runs.GetByID(req.RunID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Already gone; not an error.
			return c.decide(req, Decision{Kind: KindSkip}), nil
		}
		return Decision{}, err
	}

	if run.Status.Terminal() {
		// Cancelled or otherwise finished between enqueue and claim;
		// the outcome stands.
		return c.decide(req, Decision{Kind: KindSkip}), nil
	}

	result, err := gate.Service(c.ctx).WithDatabase(c.db).Check(&gate.CheckRequest{
		OrgID:  req.OrgID,
		Target: models.NodeRef{Type: req.NodeType, ID: run.TargetID},
	})
	if err != nil {
		return Decision{}, err
	}

	if result.Satisfied {
		return c.decide(req, Decision{Kind: KindProceed}), nil
	}

	unsatisfied := strings.Join(result.UnsatisfiedStrings(), ", ")

	if req.Attempt < c.maxRetries {
		log.Info(
			"upstream dependencies not satisfied, retrying",
			"run_id", req.RunID,
			"attempt", req.Attempt,
			"unsatisfied", unsatisfied,
		)

		metrics.AdmissionRetriesTotal.WithLabelValues(string(req.NodeType)).Inc()
		c.publish(event.TypeAdmissionRetry, req, result)

		return c.decide(req, Decision{
			Kind:        KindRetry,
			Delay:       c.retryDelay,
			Attempt:     req.Attempt + 1,
			Unsatisfied: result.Unsatisfied,
		}), nil
	}

	reason := fmt.Sprintf(
		"upstream dependencies not satisfied after %d retries: %s",
		c.maxRetries,
		unsatisfied,
	)

	log.Error(
		"admission retry budget exhausted, failing run",
		"run_id", req.RunID,
		"reason", reason,
	)

	if _, err = runs.Fail(req.RunID, reason, reason); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Another actor drove the run terminal first; its
			// outcome stands.
			return c.decide(req, Decision{Kind: KindSkip}), nil
		}
		return Decision{}, err
	}

	metrics.AdmissionExhaustionsTotal.WithLabelValues(string(req.NodeType)).Inc()

	return c.decide(req, Decision{
		Kind:        KindFail,
		Reason:      reason,
		Unsatisfied: result.Unsatisfied,
	}), nil
}

func (c *Controller) decide(req *Request, d Decision) Decision {
	metrics.AdmissionChecksTotal.
		WithLabelValues(string(req.NodeType), string(d.Kind)).
		Inc()
	return d
}

func (c *Controller) publish(t event.Type, req *Request, result *gate.Result) {
	if c.bus == nil {
		return
	}

	c.bus.Publish(event.Event{
		Type:  t,
		OrgID: req.OrgID,
		RunID: req.RunID,
	})
}
