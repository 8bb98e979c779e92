package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	oslo      = Location{Latitude: 59.9139, Longitude: 10.7522}
	bergen    = Location{Latitude: 60.3913, Longitude: 5.3221}
	trondheim = Location{Latitude: 63.4305, Longitude: 10.3951}
	equator   = Location{Latitude: 0, Longitude: 0}
	antiOslo  = Location{Latitude: -59.9139, Longitude: -169.2478}
	northPole = Location{Latitude: 90, Longitude: 0}
	southPole = Location{Latitude: -90, Longitude: 0}
	dateLineW = Location{Latitude: 0, Longitude: 179.9}
	dateLineE = Location{Latitude: 0, Longitude: -179.9}
)

func TestHaversineSymmetry(t *testing.T) {
	pairs := [][2]Location{
		{oslo, bergen},
		{oslo, trondheim},
		{equator, northPole},
		{dateLineW, dateLineE},
		{oslo, antiOslo},
	}
	for _, pair := range pairs {
		assert.InDelta(t, HaversineKm(pair[0], pair[1]), HaversineKm(pair[1], pair[0]), 1e-9)
	}
}

func TestHaversineZeroForIdenticalPoints(t *testing.T) {
	for _, loc := range []Location{oslo, equator, northPole, southPole} {
		assert.Equal(t, 0.0, HaversineKm(loc, loc))
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	// Oslo-Bergen is roughly 305 km great-circle.
	assert.InDelta(t, 305, HaversineKm(oslo, bergen), 10)

	// Pole to pole is half the circumference: pi * 6371.
	assert.InDelta(t, 20015, HaversineKm(northPole, southPole), 5)
}

// storeAt returns a catalog item at a latitude offset (in km) north of the user.
func storeAt(user Location, km float64, store string) DiscountItem {
	const kmPerDegree = 111.1949 // 6371 * pi / 180
	return DiscountItem{
		ProductName:   "Melk",
		StoreName:     store,
		StoreLocation: Location{Latitude: user.Latitude + km/kmPerDegree, Longitude: user.Longitude},
		OriginalPrice: 25,
		DiscountPrice: 18,
		ExpiresAt:     time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestFilterByLocationSoundness(t *testing.T) {
	items := []DiscountItem{
		storeAt(oslo, 0.5, "Kiwi Grønland"),
		storeAt(oslo, 2.0, "Rema Torshov"),
		storeAt(oslo, 4.9, "Coop Extra Sinsen"),
		storeAt(oslo, 5.2, "Meny Bekkestua"),
		storeAt(oslo, 40, "Spar Drammen"),
	}

	kept := FilterByLocation(items, oslo, 5.0)

	assert.Len(t, kept, 3)
	for _, item := range kept {
		assert.LessOrEqual(t, HaversineKm(oslo, item.StoreLocation), 5.0)
	}

	// Every dropped item is strictly beyond the radius.
	keptStores := make(map[string]bool)
	for _, item := range kept {
		keptStores[item.StoreName] = true
	}
	for _, item := range items {
		if !keptStores[item.StoreName] {
			assert.Greater(t, HaversineKm(oslo, item.StoreLocation), 5.0)
		}
	}
}

func TestFilterByLocationEmptyInput(t *testing.T) {
	assert.Empty(t, FilterByLocation(nil, oslo, 10))
}

func TestFilterByTimeframeSoundness(t *testing.T) {
	tf := Timeframe{
		Start: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
	}

	expired := storeAt(oslo, 1, "Kiwi")
	expired.ExpiresAt = tf.Start.AddDate(0, 0, -1) // one day before the window

	onBoundary := storeAt(oslo, 1, "Rema")
	onBoundary.ExpiresAt = tf.Start

	outlivesWindow := storeAt(oslo, 1, "Meny")
	outlivesWindow.ExpiresAt = tf.End.AddDate(0, 0, 14)

	kept := FilterByTimeframe([]DiscountItem{expired, onBoundary, outlivesWindow}, tf)

	assert.Len(t, kept, 2)
	for _, item := range kept {
		assert.False(t, item.ExpiresAt.Before(tf.Start))
	}
}
