package planner

import "math"

// HaversineKm calculates the great-circle distance between two points in kilometers.
func HaversineKm(a, b Location) float64 {
	const R = 6371.0 // Earth radius km
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// FilterByLocation keeps items whose store lies within maxDistanceKm of the
// user. Order is preserved; an empty input yields an empty output.
func FilterByLocation(items []DiscountItem, user Location, maxDistanceKm float64) []DiscountItem {
	kept := make([]DiscountItem, 0, len(items))
	for _, item := range items {
		if HaversineKm(user, item.StoreLocation) <= maxDistanceKm {
			kept = append(kept, item)
		}
	}
	return kept
}

// FilterByTimeframe keeps items whose discount is still valid when the
// shopping window opens. Discounts that outlive the window are kept; the
// purchase-day assignment never needs an item to expire inside the window.
func FilterByTimeframe(items []DiscountItem, tf Timeframe) []DiscountItem {
	kept := make([]DiscountItem, 0, len(items))
	for _, item := range items {
		if !item.ExpiresAt.Before(tf.Start) {
			kept = append(kept, item)
		}
	}
	return kept
}
