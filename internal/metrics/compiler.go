package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query compiler Prometheus metrics.
var (
	CompileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restql",
			Name:      "compile_total",
			Help:      "Total number of query compilations",
		},
		[]string{"type", "status"}, // "ok" / "invalid" / "error"
	)

	CompileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "restql",
			Name:      "compile_duration_seconds",
			Help:      "Query compilation duration in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
		[]string{"type"},
	)

	ViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restql",
			Name:      "violations_total",
			Help:      "Total query validation violations by rule",
		},
		[]string{"rule"},
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restql",
			Name:      "schema_cache_total",
			Help:      "Schema path cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerCompilerOnce sync.Once

// RegisterCompilerMetrics registers the compiler metrics with reg. Safe to call more than once.
func RegisterCompilerMetrics(reg prometheus.Registerer) {
	registerCompilerOnce.Do(func() {
		reg.MustRegister(CompileTotal, CompileDuration, ViolationsTotal, SchemaCacheTotal)
	})
}
