package planner

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/handlekurv/deal-service/internal/textnorm"
)

// substringScore is assigned when one normalized name contains the other.
// Brand-qualified catalog names ("Cheddar ost skiver") should match a plain
// ingredient name ("ost") without relying on the sequence ratio.
const substringScore = 0.9

// ProductMatcher scores catalog items against free-text ingredient names.
// The similarity algorithm is pluggable; the substring boost and threshold
// logic are fixed here.
type ProductMatcher struct {
	similarity Similarity
	threshold  float64
	logger     zerolog.Logger
}

// NewProductMatcher creates a matcher with the given similarity algorithm
// and acceptance threshold. A nil similarity falls back to SequenceRatio.
func NewProductMatcher(similarity Similarity, threshold float64) *ProductMatcher {
	if similarity == nil {
		similarity = SequenceRatio{}
	}
	return &ProductMatcher{
		similarity: similarity,
		threshold:  threshold,
		logger:     log.With().Str("component", "product_matcher").Logger(),
	}
}

// Match returns every catalog item whose name scores at or above the
// threshold for the given ingredient, in catalog order. An empty result is
// a valid outcome, not an error: the ingredient simply has no coverage.
func (m *ProductMatcher) Match(ingredient string, items []DiscountItem) []Candidate {
	needle := textnorm.Fold(ingredient)
	if needle == "" {
		return nil
	}

	var candidates []Candidate
	for _, item := range items {
		score := m.scoreNames(needle, textnorm.Fold(item.ProductName))
		if score >= m.threshold {
			candidates = append(candidates, Candidate{
				Ingredient: ingredient,
				Item:       item,
				MatchScore: score,
			})
		}
	}

	m.logger.Debug().
		Str("ingredient", ingredient).
		Int("catalogItems", len(items)).
		Int("candidates", len(candidates)).
		Msg("Matched ingredient against catalog")

	return candidates
}

// scoreNames scores two already-normalized names. Containment in either
// direction wins over the sequence ratio.
func (m *ProductMatcher) scoreNames(a, b string) float64 {
	if b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringScore
	}
	return m.similarity.Ratio(a, b)
}
