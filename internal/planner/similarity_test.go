package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceRatioIdenticalStrings(t *testing.T) {
	sim := SequenceRatio{}
	for _, s := range []string{"ost", "tortillas", "grøt med bær", ""} {
		assert.Equal(t, 1.0, sim.Ratio(s, s))
	}
}

func TestSequenceRatioDisjointStrings(t *testing.T) {
	sim := SequenceRatio{}
	assert.Equal(t, 0.0, sim.Ratio("abc", "xyz"))
	assert.Equal(t, 0.0, sim.Ratio("melk", ""))
	assert.Equal(t, 0.0, sim.Ratio("", "melk"))
}

func TestSequenceRatioSymmetry(t *testing.T) {
	sim := SequenceRatio{}
	cases := [][2]string{
		{"tortilla", "tortillas"},
		{"kylling", "kyllingfilet"},
		{"rømme", "lettrømme"},
		{"brød", "grovbrød"},
	}
	for _, c := range cases {
		assert.InDelta(t, sim.Ratio(c[0], c[1]), sim.Ratio(c[1], c[0]), 1e-9)
	}
}

func TestSequenceRatioSpellingVariants(t *testing.T) {
	sim := SequenceRatio{}

	// Common misspellings should still score well above 0.6.
	assert.Greater(t, sim.Ratio("tortillas", "tortilla"), 0.9)
	assert.Greater(t, sim.Ratio("yoghurt", "yogurt"), 0.8)

	// Unrelated products should stay below the matching threshold.
	assert.Less(t, sim.Ratio("melk", "tannkrem"), 0.6)
}

func TestSequenceRatioRange(t *testing.T) {
	sim := SequenceRatio{}
	cases := [][2]string{
		{"a", "b"}, {"laks", "laksefilet"}, {"havregryn", "gryn"}, {"x", "xxxxxxx"},
	}
	for _, c := range cases {
		r := sim.Ratio(c[0], c[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}
