package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogItem(product, store string) DiscountItem {
	return DiscountItem{
		ProductName:   product,
		StoreName:     store,
		StoreLocation: oslo,
		OriginalPrice: 30,
		DiscountPrice: 24,
		ExpiresAt:     time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestMatchSubstringBoost(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)

	items := []DiscountItem{
		catalogItem("Cheddar ost skiver", "Kiwi"),
		catalogItem("Tannkrem", "Kiwi"),
	}

	candidates := matcher.Match("ost", items)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Cheddar ost skiver", candidates[0].Item.ProductName)
	assert.Equal(t, 0.9, candidates[0].MatchScore)
	assert.Equal(t, "ost", candidates[0].Ingredient)
}

func TestMatchCaseAndWhitespaceInsensitive(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)

	items := []DiscountItem{catalogItem("TORTILLAS  Original", "Rema 1000")}

	candidates := matcher.Match("  tortillas ", items)

	require.Len(t, candidates, 1)
	assert.Equal(t, 0.9, candidates[0].MatchScore)
}

func TestMatchDiacriticFolding(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)

	// Catalog names may come from feeds in another language or with
	// different diacritics than the ingredient list.
	items := []DiscountItem{
		catalogItem("Crème Fraîche 18%", "Meny"),
		catalogItem("Rømmegrøt", "Meny"),
	}

	candidates := matcher.Match("creme fraiche", items)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Crème Fraîche 18%", candidates[0].Item.ProductName)
}

func TestMatchReturnsAllQualifyingCandidates(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)

	items := []DiscountItem{
		catalogItem("Kyllingfilet", "Kiwi"),
		catalogItem("Kylling hel", "Rema 1000"),
		catalogItem("Kyllinglår", "Coop Extra"),
		catalogItem("Fiskepinner", "Kiwi"),
	}

	candidates := matcher.Match("kylling", items)

	// The optimizer needs the full candidate set to weigh store trade-offs,
	// not just the single best match.
	require.Len(t, candidates, 3)
	// Catalog order is preserved.
	assert.Equal(t, "Kyllingfilet", candidates[0].Item.ProductName)
	assert.Equal(t, "Kylling hel", candidates[1].Item.ProductName)
	assert.Equal(t, "Kyllinglår", candidates[2].Item.ProductName)
}

func TestMatchNoCandidatesIsNotAnError(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)

	items := []DiscountItem{catalogItem("Oppvaskmiddel", "Kiwi")}

	assert.Empty(t, matcher.Match("safran", items))
}

func TestMatchThresholdMonotonicity(t *testing.T) {
	items := []DiscountItem{
		catalogItem("Tortilla", "Kiwi"),
		catalogItem("Tortellini", "Kiwi"),
		catalogItem("Taco Tortillas 8pk", "Rema 1000"),
		catalogItem("Knekkebrød", "Meny"),
		catalogItem("Tomatillo", "Meny"),
	}

	prev := -1
	for _, threshold := range []float64{0.3, 0.5, 0.6, 0.8, 0.95} {
		matcher := NewProductMatcher(SequenceRatio{}, threshold)
		n := len(matcher.Match("tortillas", items))
		if prev >= 0 {
			assert.LessOrEqual(t, n, prev, "raising the threshold must never add candidates")
		}
		prev = n
	}
}

func TestMatchEmptyIngredient(t *testing.T) {
	matcher := NewProductMatcher(SequenceRatio{}, 0.6)
	assert.Empty(t, matcher.Match("  ", []DiscountItem{catalogItem("Melk", "Kiwi")}))
}
