package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeCached = "cached"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_generations_total",
			Help: "Total number of model generations by family and outcome.",
		},
		[]string{"family", "outcome"},
	)
	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nl2sql_generation_latency_ms",
			Help:    "Model generation latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 20000, 40000},
		},
		[]string{"family"},
	)
	modelSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_model_selections_total",
			Help: "Total number of SQL generations routed to the fast or fine model.",
		},
		[]string{"tier"},
	)
	reflectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_reflections_total",
			Help: "Total number of SQL reflections by result.",
		},
		[]string{"result"},
	)
	correctionAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_correction_attempts_total",
			Help: "Total number of correction attempts sent to the correction model.",
		},
	)
	activeCorrectionSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nl2sql_active_correction_sessions",
			Help: "Current number of correction sessions held by the server.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		generationsTotal,
		generationLatencyMs,
		modelSelectionsTotal,
		reflectionsTotal,
		correctionAttemptsTotal,
		activeCorrectionSessions,
	)
}

func ObserveGeneration(family, outcome string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(family, outcome).Inc()
	if outcome != OutcomeCached {
		generationLatencyMs.WithLabelValues(family).Observe(float64(elapsed.Milliseconds()))
	}
}

func ObserveModelSelection(tier string) {
	modelSelectionsTotal.WithLabelValues(tier).Inc()
}

// ObserveReflection records a reflection result: matching, mismatch or malformed
func ObserveReflection(result string) {
	reflectionsTotal.WithLabelValues(result).Inc()
}

func IncrementCorrectionAttempts() {
	correctionAttemptsTotal.Inc()
}

func SetActiveCorrectionSessions(n int) {
	if n < 0 {
		n = 0
	}
	activeCorrectionSessions.Set(float64(n))
}
