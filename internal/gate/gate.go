// Package gate decides whether a node's direct upstream dependencies
// have produced sufficiently recent successful runs. It is a pure
// read-and-compute check: safe to evaluate repeatedly, never cached.
package gate

import (
	"context"
	"time"

	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/gorm"
)

// Result is the verdict of one gate evaluation. Unsatisfied holds the
// upstream nodes that failed their freshness check, in edge retrieval
// order (creation-descending).
type Result struct {
	Satisfied   bool             `json:"satisfied"`
	Unsatisfied []models.NodeRef `json:"unsatisfied_nodes"`
}

// UnsatisfiedStrings renders the unsatisfied nodes as "type:id"
// identifiers for messages and logs.
func (r *Result) UnsatisfiedStrings() []string {
	out := make([]string, len(r.Unsatisfied))
	for i, node := range r.Unsatisfied {
		out[i] = node.String()
	}
	return out
}

type Gate interface {
	WithDatabase(*gorm.DB) Gate
	Check(*CheckRequest) (*Result, error)
}

type gateService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Gate {
	return &gateService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (g *gateService) WithDatabase(conn *gorm.DB) Gate {
	g.db = conn
	return g
}

type CheckRequest struct {
	OrgID  int64
	Target models.NodeRef

	// Now anchors the freshness cutoffs; zero means the current
	// instant. Injectable for determinism in tests.
	Now time.Time
}

// Check fetches the target's direct upstream edges and verifies that
// every edge carrying a freshness requirement has a SUCCESS run at or
// after its cutoff. Metadata-only edges never block. The verdict is an
// AND across all timeframe-bearing edges.
func (g *gateService) Check(req *CheckRequest) (*Result, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	deps, err := depsvc.Service(g.ctx).
		WithDatabase(g.db).
		Upstream(req.OrgID, req.Target)
	if err != nil {
		return nil, err
	}

	var (
		runs        = runsvc.Service(g.ctx).WithDatabase(g.db)
		unsatisfied = make([]models.NodeRef, 0)
	)

	for _, dep := range deps {
		window, ok := dep.Timeframe()
		if !ok {
			continue
		}

		cutoff := now.Add(-window)

		fresh, err := runs.FreshSuccessExists(req.OrgID, dep.Upstream(), cutoff)
		if err != nil {
			return nil, err
		}

		if !fresh {
			unsatisfied = append(unsatisfied, dep.Upstream())
		}
	}

	result := &Result{
		Satisfied:   len(unsatisfied) == 0,
		Unsatisfied: unsatisfied,
	}

	verdict := "satisfied"
	if !result.Satisfied {
		verdict = "unsatisfied"
	}
	metrics.GateChecksTotal.WithLabelValues(verdict).Inc()

	return result, nil
}
