// Package runner defines the execution boundary for admitted runs.
// The real data-movement and model-build engines live outside this
// core; fluxline invokes them through Runner.
package runner

import (
	"context"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/log"
)

// Result is what an engine reports for a finished run.
type Result struct {
	RowsLoaded int64
	Logs       string
}

// Runner executes one admitted run to completion.
type Runner interface {
	Run(ctx context.Context, run *models.Run) (*Result, error)
}

// Func adapts a function to the Runner interface.
type Func func(ctx context.Context, run *models.Run) (*Result, error)

func (f Func) Run(ctx context.Context, run *models.Run) (*Result, error) {
	return f(ctx, run)
}

// NoOp returns a runner that records the invocation and succeeds. It
// keeps the admission loop exercisable without a real engine bound.
func NoOp() Runner {
	return Func(func(ctx context.Context, run *models.Run) (*Result, error) {
		log.Info(
			"no engine bound, completing run without execution",
			"run_id", run.ID,
			"target", run.Target().String(),
		)

		return &Result{}, nil
	})
}
