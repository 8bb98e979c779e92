package planner

import "math"

// MonetarySavings sums the savings of all purchases. Never negative for a
// valid catalog, since every discount price is below its original price.
func MonetarySavings(purchases []Purchase) float64 {
	total := 0.0
	for _, p := range purchases {
		total += p.Savings
	}
	return total
}

// SavingsEstimator estimates the time cost of a plan against a single
// nearest-store baseline.
type SavingsEstimator struct {
	config *Config
}

// NewSavingsEstimator creates an estimator using the engine's time heuristic
// knobs (minutes per stop, travel minutes per km).
func NewSavingsEstimator(config *Config) *SavingsEstimator {
	return &SavingsEstimator{config: config}
}

// TimeSavings returns the estimated hours saved versus doing the whole trip
// at the single store nearest to the user anywhere in the full catalog.
// The result may be negative: a plan spanning several stores can cost more
// time than the naive baseline, trading time for money or organic goals.
func (e *SavingsEstimator) TimeSavings(purchases []Purchase, catalog []DiscountItem, user Location) float64 {
	if len(purchases) == 0 || len(catalog) == 0 {
		return 0
	}

	// Baseline: one stop at the nearest catalog store, round trip.
	closest := math.Inf(1)
	for _, item := range catalog {
		if d := HaversineKm(user, item.StoreLocation); d < closest {
			closest = d
		}
	}
	baselineMinutes := e.config.StopMinutes + e.config.TravelMinutesPerKm*closest*2

	// Optimized plan: one stop per distinct store, each a separate round trip.
	storeDistance := make(map[string]float64)
	for _, p := range purchases {
		if _, seen := storeDistance[p.StoreName]; seen {
			continue
		}
		storeDistance[p.StoreName] = storeLocationDistance(p.StoreName, catalog, user)
	}

	optimizedMinutes := e.config.StopMinutes * float64(len(storeDistance))
	for _, d := range storeDistance {
		optimizedMinutes += e.config.TravelMinutesPerKm * d * 2
	}

	return (baselineMinutes - optimizedMinutes) / 60
}

// storeLocationDistance resolves a store's distance from the user via its
// first catalog entry. Purchases always originate from catalog items, so the
// lookup cannot miss; the zero fallback keeps the math total anyway.
func storeLocationDistance(storeName string, catalog []DiscountItem, user Location) float64 {
	for _, item := range catalog {
		if item.StoreName == storeName {
			return HaversineKm(user, item.StoreLocation)
		}
	}
	return 0
}
