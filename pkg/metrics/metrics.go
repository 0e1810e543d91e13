// Package metrics provides Prometheus metrics for coverage evaluations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// EvaluationsTotal counts coverage evaluations by source (json, csv, impact, suggest, cli).
var EvaluationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "evaluations_total",
	Help:      "Total coverage evaluations by request source",
}, []string{"source"})

// ComputeDurationSeconds tracks time spent in the calculator.
var ComputeDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "coverage",
	Name:      "compute_duration_seconds",
	Help:      "Time taken to compute a coverage analysis",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// StationsByStatus holds the station counts of the latest evaluation.
var StationsByStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "stations",
	Help:      "Stations per status in the latest evaluation",
}, []string{"status"})

// OverallCoveragePercentage holds the overall percentage of the latest evaluation.
var OverallCoveragePercentage = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "overall_percentage",
	Help:      "Overall coverage percentage of the latest evaluation",
})

// CriticalPeriods holds the number of critical periods of the latest evaluation.
var CriticalPeriods = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "critical_periods",
	Help:      "Critical and warning periods in the latest evaluation",
})

// UnfilledSlotsTotal accumulates unfilled positions seen across evaluations.
var UnfilledSlotsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "unfilled_slots_total",
	Help:      "Unfilled positions reported across all evaluations",
})

// ImpactEstimatesTotal counts what-if estimates by status change.
var ImpactEstimatesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coverage",
	Name:      "impact_estimates_total",
	Help:      "What-if estimates by resulting status change",
}, []string{"action", "status_change"})

// SuggestedAssignmentsTotal counts open shifts the scheduler proposed to fill.
var SuggestedAssignmentsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "scheduler",
	Name:      "suggested_assignments_total",
	Help:      "Open shifts the scheduler proposed a worker for",
})

// SuggestionConflictsTotal counts open shifts the scheduler could not fill.
var SuggestionConflictsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "scheduler",
	Name:      "suggestion_conflicts_total",
	Help:      "Open shifts the scheduler could not fill",
})

// ParseErrorsTotal tracks CSV parse errors by file.
var ParseErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ingest",
	Name:      "errors_total",
	Help:      "CSV parse errors by file",
}, []string{"file"})

// ObserveAnalysis records an evaluation and its outcome
func ObserveAnalysis(source string, a models.CoverageAnalysis) {
	EvaluationsTotal.WithLabelValues(source).Inc()
	StationsByStatus.WithLabelValues(string(models.StatusOptimal)).Set(float64(a.OptimalStations))
	StationsByStatus.WithLabelValues(string(models.StatusWarning)).Set(float64(a.WarningStations))
	StationsByStatus.WithLabelValues(string(models.StatusCritical)).Set(float64(a.CriticalStations))
	OverallCoveragePercentage.Set(float64(a.OverallCoveragePercentage))
	CriticalPeriods.Set(float64(len(a.CriticalPeriods)))

	unfilled := 0
	for _, sc := range a.StationCoverage {
		unfilled += sc.UnfilledSlots
	}
	UnfilledSlotsTotal.Add(float64(unfilled))
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
