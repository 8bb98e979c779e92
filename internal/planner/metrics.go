package planner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// planDuration tracks the time taken to compute a shopping plan.
	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_plan_duration_seconds",
		Help:    "Time taken to compute a shopping plan",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	})

	// planErrors tracks plan computation errors.
	planErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_plan_errors_total",
		Help: "Total number of plan computation errors",
	})

	// ingredientCount tracks the distribution of ingredient list sizes.
	ingredientCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_ingredients_count",
		Help:    "Number of ingredients in plan requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// candidateCount tracks candidates found per ingredient.
	candidateCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_candidates_per_ingredient",
		Help:    "Number of catalog candidates per ingredient",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// coverageRatio tracks the share of ingredients that received a purchase.
	coverageRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_plan_coverage_ratio",
		Help:    "Share of ingredients covered by a purchase",
		Buckets: []float64{0, 0.25, 0.5, 0.7, 0.8, 0.9, 0.95, 1.0},
	})

	// storesPerPlan tracks distinct stores in final plans.
	storesPerPlan = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_stores_per_plan",
		Help:    "Number of distinct stores in final plans",
		Buckets: []float64{1, 2, 3, 4, 5, 8},
	})

	// totalSavings tracks the monetary savings of final plans.
	totalSavings = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_plan_savings_total",
		Help:    "Total monetary savings per plan in major currency units",
		Buckets: []float64{0, 10, 25, 50, 100, 250, 500},
	})
)

// MetricsRecorder provides methods to record planner metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordPlanDuration records how long one plan computation took.
func (m *MetricsRecorder) RecordPlanDuration(d time.Duration) {
	planDuration.Observe(d.Seconds())
}

// RecordPlanError records a failed plan computation.
func (m *MetricsRecorder) RecordPlanError() {
	planErrors.Inc()
}

// RecordIngredientCount records the size of an ingredient list.
func (m *MetricsRecorder) RecordIngredientCount(n int) {
	ingredientCount.Observe(float64(n))
}

// RecordCandidateCount records how many candidates one ingredient produced.
func (m *MetricsRecorder) RecordCandidateCount(n int) {
	candidateCount.Observe(float64(n))
}

// RecordPlan records summary metrics of a finished plan.
func (m *MetricsRecorder) RecordPlan(plan *Plan, ingredients int) {
	if ingredients > 0 {
		coverageRatio.Observe(float64(len(plan.Purchases)) / float64(ingredients))
	}
	if len(plan.Purchases) > 0 {
		storesPerPlan.Observe(float64(plan.StoreCount()))
	}
	totalSavings.Observe(plan.TotalSavings)
}
