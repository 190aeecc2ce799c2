// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.Nil(t, m.GetOrCreateHandler())

	// none of these may panic
	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateCountVecMeter("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "v"})
	m.GetOrCreateGaugeMeter("g").Set(1)
	m.GetOrCreateHistogramVecMeter("h", []string{"l"}, BucketExecTime).ObserveWithLabels(1, map[string]string{"l": "v"})
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	counter := LazyLoadCounterVec("test_calls_count", []string{"outcome"})
	counter().AddWithLabel(2, map[string]string{"outcome": "ok"})
	gauge := LazyLoadGauge("test_rate")
	gauge().Set(42)

	// same meter instance is returned on repeated lookups
	assert.Equal(t, Gauge("test_rate"), gauge())

	srv := httptest.NewServer(HTTPHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `swell_metrics_test_calls_count{outcome="ok"} 2`))
	assert.True(t, strings.Contains(text, "swell_metrics_test_rate 42"))
}
