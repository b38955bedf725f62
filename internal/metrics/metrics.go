package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_runs_total",
			Help: "Total number of runs by node type and terminal status.",
		},
		[]string{"node_type", "status"},
	)

	AdmissionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_admission_checks_total",
			Help: "Total number of admission checks by decision.",
		},
		[]string{"node_type", "decision"},
	)

	AdmissionRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_admission_retries_total",
			Help: "Total number of admission retries scheduled by node type.",
		},
		[]string{"node_type"},
	)

	AdmissionExhaustionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_admission_exhaustions_total",
			Help: "Total number of runs failed after the admission retry budget ran out.",
		},
		[]string{"node_type"},
	)

	GateChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_gate_checks_total",
			Help: "Total number of freshness gate evaluations by verdict.",
		},
		[]string{"verdict"},
	)

	WorkerClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_worker_claims_total",
			Help: "Total number of tasks successfully claimed by worker node.",
		},
		[]string{"node_id"},
	)

	WorkerClaimContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_worker_claim_contention_total",
			Help: "Total number of worker claim contention events.",
		},
		[]string{"node_id"},
	)

	ScheduleFiresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxline_schedule_fires_total",
			Help: "Total number of schedule fires by node type.",
		},
		[]string{"node_type"},
	)
)

// Register registers all custom fluxline metrics with the default
// Prometheus registry.
func Register() {
	prometheus.MustRegister(
		RunsTotal,
		AdmissionChecksTotal,
		AdmissionRetriesTotal,
		AdmissionExhaustionsTotal,
		GateChecksTotal,
		WorkerClaimsTotal,
		WorkerClaimContentionTotal,
		ScheduleFiresTotal,
	)
}
