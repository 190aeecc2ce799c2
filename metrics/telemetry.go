// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes call, ledger and api meters. Meters are no-ops until
// InitializePrometheusMetrics is called.
package metrics

import (
	"net/http"
	"sync"
)

var metrics = defaultNoopMetrics()

// Metrics creates meters by name. Repeated lookups return the same meter.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler serves the collected meters. It is nil while metrics are disabled.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

var (
	// BucketExecTime buckets call execution durations in microseconds.
	BucketExecTime = []int64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10_000, 50_000}
	// BucketHTTPReqs buckets api request durations in milliseconds.
	BucketHTTPReqs = []int64{0, 150, 300, 450, 600, 900, 1200, 1500, 3000}
)

type (
	HistogramVecMeter interface {
		ObserveWithLabels(int64, map[string]string)
	}
	CountMeter interface {
		Add(int64)
	}
	CountVecMeter interface {
		AddWithLabel(int64, map[string]string)
	}
	GaugeMeter interface {
		Add(int64)
		Set(int64)
	}
)

// Gauge returns the gauge registered under name.
func Gauge(name string) GaugeMeter {
	return metrics.GetOrCreateGaugeMeter(name)
}

// lazy resolves the meter on first use, so package level meters follow
// the backend chosen at startup.
func lazy[T any](f func(Metrics) T) func() T {
	return sync.OnceValue(func() T { return f(metrics) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return lazy(func(m Metrics) HistogramVecMeter { return m.GetOrCreateHistogramVecMeter(name, labels, buckets) })
}

func LazyLoadCounter(name string) func() CountMeter {
	return lazy(func(m Metrics) CountMeter { return m.GetOrCreateCountMeter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return lazy(func(m Metrics) CountVecMeter { return m.GetOrCreateCountVecMeter(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return lazy(func(m Metrics) GaugeMeter { return m.GetOrCreateGaugeMeter(name) })
}
