package planner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Optimizer assembles a shopping plan from a catalog snapshot: it filters the
// catalog by distance and discount validity, fuzzy-matches every ingredient
// to candidate items, and selects one purchase per matched ingredient with a
// two-pass greedy procedure that rewards store consolidation.
type Optimizer struct {
	matcher *ProductMatcher
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// NewOptimizer creates an optimizer. A nil metrics recorder is replaced with
// a fresh one.
func NewOptimizer(config *Config, metrics *MetricsRecorder) *Optimizer {
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &Optimizer{
		matcher: NewProductMatcher(SequenceRatio{}, config.MatchThreshold),
		config:  config,
		metrics: metrics,
		logger:  log.With().Str("component", "plan_optimizer").Logger(),
	}
}

// ingredientCandidates is the per-ingredient working set for one run.
// Candidates keep catalog order; distances are precomputed per candidate so
// scoring never recomputes Haversine math inside the selection loops.
type ingredientCandidates struct {
	name       string
	candidates []Candidate
	distances  []float64
}

// Plan computes a shopping plan for the request. Identical inputs always
// produce identical output: iteration follows the ingredient slice and the
// catalog snapshot order, never map iteration order. The context is only
// consulted between ingredients; the computation itself never blocks.
func (o *Optimizer) Plan(ctx context.Context, req *PlanRequest) (*Plan, error) {
	start := time.Now()
	defer func() {
		o.metrics.RecordPlanDuration(time.Since(start))
	}()

	if err := req.Validate(o.config.MaxIngredients); err != nil {
		o.metrics.RecordPlanError()
		return nil, err
	}

	o.metrics.RecordIngredientCount(len(req.Ingredients))

	maxDist := req.MaxDistanceKm
	if maxDist == 0 {
		maxDist = o.config.MaxDistanceKm
	}

	inRange := FilterByLocation(req.Catalog, req.Location, maxDist)
	valid := FilterByTimeframe(inRange, req.Timeframe)

	o.logger.Debug().
		Int("catalogItems", len(req.Catalog)).
		Int("withinRange", len(inRange)).
		Int("stillValid", len(valid)).
		Float64("maxDistanceKm", maxDist).
		Msg("Filtered catalog snapshot")

	// Build candidate sets in ingredient order. The sets are fixed for both
	// passes; only the store assignment counters change between them.
	sets := make([]ingredientCandidates, 0, len(req.Ingredients))
	for _, name := range req.Ingredients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cands := o.matcher.Match(name, valid)
		o.metrics.RecordCandidateCount(len(cands))

		distances := make([]float64, len(cands))
		for i, c := range cands {
			distances[i] = HaversineKm(req.Location, c.Item.StoreLocation)
		}
		sets = append(sets, ingredientCandidates{
			name:       name,
			candidates: cands,
			distances:  distances,
		})
	}

	scorer := NewCriteriaScorer(req.Preferences)

	// Pass 1 seeds store assignment counts ingredient by ingredient; pass 2
	// reruns the identical selection from empty counters so consolidation
	// bonuses settle on the pass-1 store set instead of on early-ingredient
	// accidents. Only pass-2 selections make it into the plan.
	o.runPass(ctx, sets, scorer)
	selected := o.runPass(ctx, sets, scorer)

	plan := o.buildPlan(req, sets, selected)
	o.metrics.RecordPlan(plan, len(req.Ingredients))

	o.logger.Info().
		Int("ingredients", len(req.Ingredients)).
		Int("purchases", len(plan.Purchases)).
		Int("unmatched", len(plan.Unmatched)).
		Int("stores", plan.StoreCount()).
		Float64("totalSavings", plan.TotalSavings).
		Float64("timeSavingsHours", plan.TimeSavingsHours).
		Msg("Computed shopping plan")

	return plan, nil
}

// runPass performs one greedy selection sweep. For each ingredient, every
// candidate is scored against the counters accumulated so far in this pass
// and the strictly best one wins; on exact ties the earlier candidate keeps
// its seat. Returns the selected candidate index per ingredient, -1 when the
// ingredient has no candidates. The counters map is local to the pass.
func (o *Optimizer) runPass(ctx context.Context, sets []ingredientCandidates, scorer *CriteriaScorer) []int {
	storeAssignments := make(map[string]int)
	selected := make([]int, len(sets))

	for i, set := range sets {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestScore := 0.0
		for j, cand := range set.candidates {
			score := scorer.Score(cand, set.distances[j], storeAssignments)
			if bestIdx == -1 || score > bestScore {
				bestIdx = j
				bestScore = score
			}
		}

		selected[i] = bestIdx
		if bestIdx >= 0 {
			storeAssignments[set.candidates[bestIdx].Item.StoreName]++
		}
	}

	return selected
}

// buildPlan turns pass-2 selections into purchases and estimates savings.
func (o *Optimizer) buildPlan(req *PlanRequest, sets []ingredientCandidates, selected []int) *Plan {
	plan := &Plan{
		Purchases: make([]Purchase, 0, len(sets)),
	}

	for i, set := range sets {
		if selected[i] < 0 {
			plan.Unmatched = append(plan.Unmatched, set.name)
			continue
		}
		item := set.candidates[selected[i]].Item
		plan.Purchases = append(plan.Purchases, Purchase{
			Ingredient:  set.name,
			ProductName: item.ProductName,
			StoreName:   item.StoreName,
			// Every purchase lands on the window start for now.
			// TODO: schedule purchases of soon-expiring discounts earlier in
			// the window once per-day availability data is ingested.
			PurchaseDay: req.Timeframe.Start,
			Price:       item.DiscountPrice,
			Savings:     item.Savings(),
		})
	}

	estimator := NewSavingsEstimator(o.config)
	plan.TotalSavings = MonetarySavings(plan.Purchases)
	plan.TimeSavingsHours = estimator.TimeSavings(plan.Purchases, req.Catalog, req.Location)

	return plan
}
