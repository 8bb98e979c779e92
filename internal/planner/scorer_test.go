package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightTableCoversAllCombinationsAndSumsToOne(t *testing.T) {
	combos := 0
	for _, savings := range []bool{false, true} {
		for _, stores := range []bool{false, true} {
			for _, organic := range []bool{false, true} {
				if !savings && !stores && !organic {
					continue
				}
				combos++
				key := [3]bool{savings, stores, organic}
				w, ok := weightTable[key]
				require.True(t, ok, "missing weight row for %v", key)
				assert.InDelta(t, 1.0, w.Savings+w.Distance+w.Organic, 1e-9,
					"weights must sum to 1.0 for %v", key)

				// A weight may only be non-zero when its preference is active.
				if !savings {
					assert.Zero(t, w.Savings)
				}
				if !stores {
					assert.Zero(t, w.Distance)
				}
				if !organic {
					assert.Zero(t, w.Organic)
				}
			}
		}
	}
	assert.Equal(t, 7, combos)
	assert.Len(t, weightTable, 7)
}

func TestScoreSavingsOnly(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{MaximizeSavings: true})

	c := Candidate{Item: catalogItem("Tortillas", "Kiwi")}
	c.Item.OriginalPrice = 25
	c.Item.DiscountPrice = 18

	// savingsScore = 7/25 = 0.28, weight 1.0, no assignments yet.
	assert.InDelta(t, 0.28, scorer.Score(c, 3.0, map[string]int{}), 1e-9)
}

func TestScoreStoresOnlyPrefersCloserStore(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{MinimizeStores: true})

	c := Candidate{Item: catalogItem("Melk", "Kiwi")}
	counts := map[string]int{}

	near := scorer.Score(c, 0.5, counts)
	far := scorer.Score(c, 12.0, counts)

	assert.Greater(t, near, far)
	assert.InDelta(t, 1.0/1.5, near, 1e-9)
}

func TestScoreOrganicOnly(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{PreferOrganic: true})

	organic := Candidate{Item: catalogItem("Økologisk melk", "Kiwi")}
	organic.Item.IsOrganic = true
	regular := Candidate{Item: catalogItem("Melk", "Kiwi")}

	counts := map[string]int{}
	assert.Equal(t, 1.0, scorer.Score(organic, 0, counts))
	assert.Equal(t, 0.5, scorer.Score(regular, 0, counts))
}

func TestScoreAllThreeWeighted(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{
		MaximizeSavings: true,
		MinimizeStores:  true,
		PreferOrganic:   true,
	})

	c := Candidate{Item: catalogItem("Økologisk havregryn", "Rema 1000")}
	c.Item.OriginalPrice = 40
	c.Item.DiscountPrice = 30
	c.Item.IsOrganic = true

	// 0.5*(10/40) + 0.3*(1/(1+1)) + 0.2*1.0 = 0.125 + 0.15 + 0.2
	assert.InDelta(t, 0.475, scorer.Score(c, 1.0, map[string]int{}), 1e-9)
}

func TestScoreConsolidationBonusIsUnconditionalAndMonotone(t *testing.T) {
	for _, prefs := range []Preferences{
		{MaximizeSavings: true},
		{MinimizeStores: true},
		{PreferOrganic: true},
		{MaximizeSavings: true, MinimizeStores: true, PreferOrganic: true},
	} {
		t.Run(fmt.Sprintf("%+v", prefs), func(t *testing.T) {
			scorer := NewCriteriaScorer(prefs)
			c := Candidate{Item: catalogItem("Melk", "Kiwi")}

			prev := scorer.Score(c, 2.0, map[string]int{})
			for n := 1; n <= 5; n++ {
				score := scorer.Score(c, 2.0, map[string]int{"Kiwi": n})
				assert.Greater(t, score, prev,
					"more assignments at the store must strictly increase the score")
				assert.InDelta(t, consolidationBonusPerItem, score-prev, 1e-9)
				prev = score
			}
		})
	}
}

func TestScoreCanExceedOne(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{MaximizeSavings: true})
	c := Candidate{Item: catalogItem("Melk", "Kiwi")}

	score := scorer.Score(c, 0, map[string]int{"Kiwi": 6})
	assert.Greater(t, score, 1.0)
}

func TestScoreIgnoresOtherStoresCounts(t *testing.T) {
	scorer := NewCriteriaScorer(Preferences{MaximizeSavings: true})
	c := Candidate{Item: catalogItem("Melk", "Kiwi")}

	base := scorer.Score(c, 0, map[string]int{})
	withOthers := scorer.Score(c, 0, map[string]int{"Rema 1000": 4, "Meny": 2})
	assert.Equal(t, base, withOthers)
}
