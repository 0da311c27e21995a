package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFetchCyclesTotal_ByOutcome(t *testing.T) {
	before := testutil.ToFloat64(FetchCyclesTotal.WithLabelValues("reported"))

	FetchCyclesTotal.WithLabelValues("reported").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(FetchCyclesTotal.WithLabelValues("reported")))
}

func TestPullCount_Gauge(t *testing.T) {
	PullCount.Set(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(PullCount))
}
