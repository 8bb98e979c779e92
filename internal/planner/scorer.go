package planner

// consolidationBonusPerItem is added to a candidate's score for every item
// already assigned to the same store within the current optimization pass.
// It is applied regardless of preferences and may push scores above 1.0,
// which is what pulls a basket toward fewer distinct stores.
const consolidationBonusPerItem = 0.2

// organicScoreYes and organicScoreNo are the organic term's two values.
const (
	organicScoreYes = 1.0
	organicScoreNo  = 0.5
)

// criteriaWeights holds the weight of each scoring term. Weights of the
// active terms always sum to 1.0.
type criteriaWeights struct {
	Savings  float64
	Distance float64
	Organic  float64
}

// weightTable maps the active-preference triple {savings, stores, organic}
// to term weights. All seven non-empty combinations are enumerated so the
// dispatch stays exhaustive and testable; the all-false key never occurs
// because request validation requires at least one active preference.
var weightTable = map[[3]bool]criteriaWeights{
	{true, false, false}: {Savings: 1.0},
	{false, true, false}: {Distance: 1.0},
	{false, false, true}: {Organic: 1.0},
	{true, true, false}:  {Savings: 0.6, Distance: 0.4},
	{true, false, true}:  {Savings: 0.6, Organic: 0.4},
	{false, true, true}:  {Distance: 0.6, Organic: 0.4},
	{true, true, true}:   {Savings: 0.5, Distance: 0.3, Organic: 0.2},
}

// weightsFor resolves the weight row for a preference combination.
func weightsFor(p Preferences) criteriaWeights {
	return weightTable[[3]bool{p.MaximizeSavings, p.MinimizeStores, p.PreferOrganic}]
}

// CriteriaScorer computes the weighted score of one candidate under a fixed
// preference set. It holds no mutable state; the per-store assignment counts
// are owned by the optimizer loop and passed in on every call.
type CriteriaScorer struct {
	prefs   Preferences
	weights criteriaWeights
}

// NewCriteriaScorer creates a scorer for the given preferences.
func NewCriteriaScorer(prefs Preferences) *CriteriaScorer {
	return &CriteriaScorer{prefs: prefs, weights: weightsFor(prefs)}
}

// Score returns a non-negative score for the candidate; higher is better.
// distanceKm is the distance from the user to the candidate's store and
// storeAssignments counts how many ingredients earlier in the current pass
// were assigned to each store.
func (s *CriteriaScorer) Score(c Candidate, distanceKm float64, storeAssignments map[string]int) float64 {
	score := 0.0

	if s.prefs.MaximizeSavings {
		savingsScore := c.Item.Savings() / c.Item.OriginalPrice
		score += s.weights.Savings * savingsScore
	}
	if s.prefs.MinimizeStores {
		// Distance stands in for trip cost: consolidating around a nearby
		// store is cheaper than around a distant one.
		distanceScore := 1 / (1 + distanceKm)
		score += s.weights.Distance * distanceScore
	}
	if s.prefs.PreferOrganic {
		organicScore := organicScoreNo
		if c.Item.IsOrganic {
			organicScore = organicScoreYes
		}
		score += s.weights.Organic * organicScore
	}

	score += consolidationBonusPerItem * float64(storeAssignments[c.Item.StoreName])
	return score
}
