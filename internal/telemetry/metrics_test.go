package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(Purchases.WithLabelValues("accounts", "ok"))
	Purchases.WithLabelValues("accounts", Outcome(nil)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Purchases.WithLabelValues("accounts", "ok")))

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer, "mazpan_shop_purchases_total")
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
