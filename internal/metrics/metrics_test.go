package metrics

import (
	"testing"

	metrictestutil "github.com/fluxline-cloud/fluxline/internal/metrics/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type MetricsSuite struct {
	suite.Suite
	registry *prometheus.Registry
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsSuite))
}

func (s *MetricsSuite) SetupTest() {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
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

func (s *MetricsSuite) TearDownTest() {
	s.registry.Unregister(RunsTotal)
	s.registry.Unregister(AdmissionChecksTotal)
	s.registry.Unregister(AdmissionRetriesTotal)
	s.registry.Unregister(AdmissionExhaustionsTotal)
	s.registry.Unregister(GateChecksTotal)
	s.registry.Unregister(WorkerClaimsTotal)
	s.registry.Unregister(WorkerClaimContentionTotal)
	s.registry.Unregister(ScheduleFiresTotal)
}

func (s *MetricsSuite) TestAdmissionChecksTotalIncrements() {
	AdmissionChecksTotal.WithLabelValues("upload", "retry").Inc()
	AdmissionChecksTotal.WithLabelValues("upload", "retry").Inc()
	AdmissionChecksTotal.WithLabelValues("upload", "proceed").Inc()

	val := metrictestutil.CounterValue(s.T(), AdmissionChecksTotal, "upload", "retry")
	s.GreaterOrEqual(val, float64(2))

	val = metrictestutil.CounterValue(s.T(), AdmissionChecksTotal, "upload", "proceed")
	s.GreaterOrEqual(val, float64(1))
}

func (s *MetricsSuite) TestGateChecksTotalIncrements() {
	GateChecksTotal.WithLabelValues("unsatisfied").Inc()

	val := metrictestutil.CounterValue(s.T(), GateChecksTotal, "unsatisfied")
	s.GreaterOrEqual(val, float64(1))
}
