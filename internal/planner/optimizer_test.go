package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = Timeframe{
	Start: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
}

func newTestOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	return NewOptimizer(cfg, NewMetricsRecorder())
}

// discountAt builds a valid catalog item km kilometers north of the user.
func discountAt(product, store string, original, discount float64, km float64, organic bool) DiscountItem {
	item := storeAt(oslo, km, store)
	item.ProductName = product
	item.OriginalPrice = original
	item.DiscountPrice = discount
	item.DiscountPercent = (original - discount) / original * 100
	item.IsOrganic = organic
	item.ExpiresAt = testWindow.End.AddDate(0, 0, 3)
	return item
}

func TestPlanSingleItemSavings(t *testing.T) {
	opt := newTestOptimizer(t)

	req := &PlanRequest{
		Ingredients: []string{"tortillas"},
		Catalog: []DiscountItem{
			discountAt("Tortillas", "A", 25, 18, 1.0, false),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	p := plan.Purchases[0]
	assert.Equal(t, "tortillas", p.Ingredient)
	assert.Equal(t, "Tortillas", p.ProductName)
	assert.Equal(t, "A", p.StoreName)
	assert.Equal(t, 18.0, p.Price)
	assert.Equal(t, 7.0, p.Savings)
	assert.Equal(t, testWindow.Start, p.PurchaseDay)
	assert.Equal(t, 7.0, plan.TotalSavings)
	assert.Empty(t, plan.Unmatched)
}

func TestPlanConsolidatesStores(t *testing.T) {
	opt := newTestOptimizer(t)

	// Both ingredients are available at Kiwi; melk is marginally closer at
	// Rema. With minimizeStores the consolidation bonus must pull the melk
	// purchase over to Kiwi in the refinement pass.
	req := &PlanRequest{
		Ingredients: []string{"brød", "melk"},
		Catalog: []DiscountItem{
			discountAt("Grovbrød", "Kiwi", 35, 28, 1.0, false),
			discountAt("Melk 1L", "Kiwi", 22, 18, 1.0, false),
			discountAt("Melk 1L", "Rema 1000", 22, 18, 0.8, false),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MinimizeStores: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 2)
	assert.Equal(t, 1, plan.StoreCount())
	for _, p := range plan.Purchases {
		assert.Equal(t, "Kiwi", p.StoreName)
	}
}

func TestPlanUnmatchedIngredient(t *testing.T) {
	opt := newTestOptimizer(t)

	req := &PlanRequest{
		Ingredients: []string{"melk", "safran"},
		Catalog: []DiscountItem{
			discountAt("Melk 1L", "Kiwi", 22, 18, 1.0, false),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "melk", plan.Purchases[0].Ingredient)
	assert.Equal(t, []string{"safran"}, plan.Unmatched)
}

func TestPlanExcludesExpiredDiscounts(t *testing.T) {
	opt := newTestOptimizer(t)

	expired := discountAt("Tortillas", "A", 25, 18, 1.0, false)
	expired.ExpiresAt = testWindow.Start.AddDate(0, 0, -1)

	req := &PlanRequest{
		Ingredients: []string{"tortillas"},
		Catalog:     []DiscountItem{expired},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, plan.Purchases)
	assert.Equal(t, []string{"tortillas"}, plan.Unmatched)
	assert.Zero(t, plan.TotalSavings)
}

func TestPlanExcludesStoresOutOfRange(t *testing.T) {
	opt := newTestOptimizer(t)

	req := &PlanRequest{
		Ingredients: []string{"melk"},
		Catalog: []DiscountItem{
			discountAt("Melk 1L", "Spar Drammen", 22, 15, 38, false),
		},
		Location:      oslo,
		Timeframe:     testWindow,
		Preferences:   Preferences{MaximizeSavings: true},
		MaxDistanceKm: 5,
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, plan.Purchases)
}

func TestPlanPrefersOrganic(t *testing.T) {
	opt := newTestOptimizer(t)

	req := &PlanRequest{
		Ingredients: []string{"melk"},
		Catalog: []DiscountItem{
			discountAt("Melk 1L", "Kiwi", 22, 18, 1.0, false),
			discountAt("Økologisk Melk 1L", "Meny", 26, 22, 1.0, true),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{PreferOrganic: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "Økologisk Melk 1L", plan.Purchases[0].ProductName)
}

func TestPlanFirstSeenWinsOnExactTies(t *testing.T) {
	opt := newTestOptimizer(t)

	// Identical prices, distances and organic flags: the candidate that
	// appears first in the catalog snapshot must win.
	req := &PlanRequest{
		Ingredients: []string{"melk"},
		Catalog: []DiscountItem{
			discountAt("Melk 1L", "Kiwi", 22, 18, 1.0, false),
			discountAt("Melk 1L", "Rema 1000", 22, 18, 1.0, false),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true},
	}

	plan, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "Kiwi", plan.Purchases[0].StoreName)
}

func TestPlanDeterminism(t *testing.T) {
	opt := newTestOptimizer(t)

	req := &PlanRequest{
		Ingredients: []string{"melk", "brød", "kylling", "tortillas", "ost"},
		Catalog: []DiscountItem{
			discountAt("Melk 1L", "Kiwi", 22, 18, 1.2, false),
			discountAt("Melk 1L", "Rema 1000", 22, 17, 2.4, false),
			discountAt("Grovbrød", "Meny", 35, 28, 0.9, false),
			discountAt("Kyllingfilet", "Kiwi", 89, 69, 1.2, false),
			discountAt("Kylling hel", "Coop Extra", 79, 59, 3.1, false),
			discountAt("Taco Tortillas 8pk", "Rema 1000", 25, 18, 2.4, false),
			discountAt("Cheddar ost skiver", "Meny", 45, 36, 0.9, false),
			discountAt("Økologisk Melk 1L", "Meny", 26, 22, 0.9, true),
		},
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true, MinimizeStores: true, PreferOrganic: true},
	}

	first, err := opt.Plan(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := opt.Plan(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, next, "identical inputs must produce identical plans")
	}
}

func TestPlanEmptyInputs(t *testing.T) {
	opt := newTestOptimizer(t)

	plan, err := opt.Plan(context.Background(), &PlanRequest{
		Ingredients: nil,
		Catalog:     nil,
		Location:    oslo,
		Timeframe:   testWindow,
		Preferences: Preferences{MaximizeSavings: true},
	})
	require.NoError(t, err)

	assert.Empty(t, plan.Purchases)
	assert.Empty(t, plan.Unmatched)
	assert.Zero(t, plan.TotalSavings)
	assert.Zero(t, plan.TimeSavingsHours)
}

func TestPlanRejectsInvalidRequests(t *testing.T) {
	opt := newTestOptimizer(t)

	cases := []struct {
		name string
		req  *PlanRequest
	}{
		{
			name: "no active preference",
			req: &PlanRequest{
				Ingredients: []string{"melk"},
				Location:    oslo,
				Timeframe:   testWindow,
			},
		},
		{
			name: "latitude out of range",
			req: &PlanRequest{
				Ingredients: []string{"melk"},
				Location:    Location{Latitude: 91},
				Timeframe:   testWindow,
				Preferences: Preferences{MaximizeSavings: true},
			},
		},
		{
			name: "window ends before it starts",
			req: &PlanRequest{
				Ingredients: []string{"melk"},
				Location:    oslo,
				Timeframe:   Timeframe{Start: testWindow.End, End: testWindow.Start},
				Preferences: Preferences{MaximizeSavings: true},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := opt.Plan(context.Background(), tc.req)
			var invalid ErrInvalidRequest
			require.ErrorAs(t, err, &invalid)
		})
	}
}
