package application

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"civic-backoffice/internal/infrastructure/metrics"
)

func counterValue(t *testing.T, m *metrics.Metrics, action, outcome string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.Transitions().WithLabelValues(action, outcome))
}
