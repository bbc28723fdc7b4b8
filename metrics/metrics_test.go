// SPDX-License-Identifier: MIT

package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata/metrics"
)

func TestObserve(t *testing.T) {
	c := metrics.New()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	start := time.Now()
	c.Observe(metrics.OpWrite, "h5ad", start, nil)
	c.Observe(metrics.OpWrite, "h5ad", start, nil)
	c.Observe(metrics.OpRead, "loom", start, errors.New("boom"))
	c.Element(metrics.OpWrite, "h5ad", "X")

	require.Equal(t, 2.0, testutil.ToFloat64(c.Operations().WithLabelValues(metrics.OpWrite, "h5ad", metrics.OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Operations().WithLabelValues(metrics.OpRead, "loom", metrics.OutcomeError)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Elements().WithLabelValues(metrics.OpWrite, "h5ad", "X")))

	n, err := testutil.GatherAndCount(reg, "anndata_operation_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n) // one series per op/format pair
}

func TestNilCollector(t *testing.T) {
	var c *metrics.Collector
	require.NotPanics(t, func() {
		c.Observe(metrics.OpRead, "zarr", time.Now(), nil)
		c.Element(metrics.OpRead, "zarr", "obs")
	})
}
