package planner

import (
	"fmt"
	"time"
)

// Location is a geographic point in WGS84 coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Timeframe is the user's shopping window. End must not precede Start.
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Preferences selects which criteria the optimizer weighs.
// At least one flag must be set; Validate on PlanRequest enforces this
// before the engine runs.
type Preferences struct {
	MaximizeSavings bool `json:"maximizeSavings"`
	MinimizeStores  bool `json:"minimizeStores"`
	PreferOrganic   bool `json:"preferOrganic"`
}

// AnyActive reports whether at least one preference flag is set.
func (p Preferences) AnyActive() bool {
	return p.MaximizeSavings || p.MinimizeStores || p.PreferOrganic
}

// DiscountItem is one catalog entry: a discounted product at a concrete store.
// The catalog source guarantees OriginalPrice > 0, DiscountPrice > 0 and
// DiscountPrice < OriginalPrice; the engine does not re-validate rows.
type DiscountItem struct {
	ProductName     string    `json:"productName"`
	StoreName       string    `json:"storeName"`
	StoreAddress    string    `json:"storeAddress"`
	StoreLocation   Location  `json:"storeLocation"`
	OriginalPrice   float64   `json:"originalPrice"`
	DiscountPrice   float64   `json:"discountPrice"`
	DiscountPercent float64   `json:"discountPercent"`
	ExpiresAt       time.Time `json:"expiresAt"`
	IsOrganic       bool      `json:"isOrganic"`
}

// Savings is the absolute price reduction for this item.
func (d DiscountItem) Savings() float64 {
	return d.OriginalPrice - d.DiscountPrice
}

// Candidate associates one ingredient with a catalog item that matched it.
// Many candidates may exist per ingredient; the optimizer selects one.
type Candidate struct {
	Ingredient string       `json:"ingredient"`
	Item       DiscountItem `json:"item"`
	MatchScore float64      `json:"matchScore"`
}

// Purchase is the optimizer's selection for a single ingredient.
type Purchase struct {
	Ingredient  string    `json:"ingredient"`
	ProductName string    `json:"productName"`
	StoreName   string    `json:"storeName"`
	PurchaseDay time.Time `json:"purchaseDay"`
	Price       float64   `json:"price"`
	Savings     float64   `json:"savings"`
}

// PlanRequest carries everything one optimization run needs. The catalog
// snapshot and the request fields are treated as immutable for the duration
// of the call, so a single request value must not be mutated concurrently.
type PlanRequest struct {
	Ingredients   []string       // already deduplicated by the caller
	Catalog       []DiscountItem // catalog snapshot, deterministic order
	Location      Location
	Timeframe     Timeframe
	Preferences   Preferences
	MaxDistanceKm float64 // 0 means use the configured default
}

// Plan is the optimizer's output: one purchase per matched ingredient plus
// the estimated savings versus a nearest-store baseline.
type Plan struct {
	Purchases        []Purchase `json:"purchases"`
	Unmatched        []string   `json:"unmatched,omitempty"`
	TotalSavings     float64    `json:"totalSavings"`
	TimeSavingsHours float64    `json:"timeSavingsHours"`
}

// StoreCount returns the number of distinct stores in the plan.
func (p *Plan) StoreCount() int {
	stores := make(map[string]struct{}, len(p.Purchases))
	for _, pu := range p.Purchases {
		stores[pu.StoreName] = struct{}{}
	}
	return len(stores)
}

// Validate validates the plan request and returns an error if invalid.
func (r *PlanRequest) Validate(maxIngredients int) error {
	if len(r.Ingredients) > maxIngredients {
		return ErrInvalidRequest{Field: "ingredients", Reason: "exceeds maximum allowed"}
	}
	for i, name := range r.Ingredients {
		if name == "" {
			return ErrInvalidRequest{Field: "ingredients", Reason: fmt.Sprintf("ingredient at index %d is empty", i)}
		}
	}
	if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
		return ErrInvalidRequest{Field: "location.latitude", Reason: "must be between -90 and 90"}
	}
	if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		return ErrInvalidRequest{Field: "location.longitude", Reason: "must be between -180 and 180"}
	}
	if r.Timeframe.End.Before(r.Timeframe.Start) {
		return ErrInvalidRequest{Field: "timeframe", Reason: "end must not precede start"}
	}
	if !r.Preferences.AnyActive() {
		return ErrInvalidRequest{Field: "preferences", Reason: "at least one preference must be set"}
	}
	if r.MaxDistanceKm < 0 {
		return ErrInvalidRequest{Field: "maxDistanceKm", Reason: "must be non-negative"}
	}
	return nil
}

// ErrInvalidRequest is returned when a plan request fails precondition checks.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
