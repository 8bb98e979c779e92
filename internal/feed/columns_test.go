package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumnsNorwegianHeaders(t *testing.T) {
	cols, err := ResolveColumns([]string{
		"Butikk", "Adresse", "Breddegrad", "Lengdegrad",
		"Produkt", "Ordinærpris", "Tilbudspris", "Rabatt", "Utløpsdato", "Økologisk",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cols.Store)
	assert.Equal(t, 1, cols.Address)
	assert.Equal(t, 2, cols.Lat)
	assert.Equal(t, 3, cols.Lon)
	assert.Equal(t, 4, cols.Product)
	assert.Equal(t, 5, cols.Original)
	assert.Equal(t, 6, cols.Discount)
	assert.Equal(t, 7, cols.Percent)
	assert.Equal(t, 8, cols.Expires)
	assert.Equal(t, 9, cols.Organic)
}

func TestResolveColumnsEnglishHeadersWithSeparators(t *testing.T) {
	cols, err := ResolveColumns([]string{
		"store_name", "latitude", "longitude", "product-name",
		"original_price", "discount_price", "expires_at",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cols.Store)
	assert.Equal(t, 3, cols.Product)
	assert.Equal(t, 6, cols.Expires)
	assert.Equal(t, -1, cols.Address)
	assert.Equal(t, -1, cols.Organic)
}

func TestResolveColumnsMissingRequired(t *testing.T) {
	_, err := ResolveColumns([]string{"Butikk", "Produkt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestRowFromRecordComputesDiscountPercent(t *testing.T) {
	cols, err := ResolveColumns([]string{
		"butikk", "breddegrad", "lengdegrad", "produkt",
		"ordinaerpris", "tilbudspris", "utlopsdato",
	})
	require.NoError(t, err)

	row, err := RowFromRecord(cols, []string{
		"Kiwi Majorstuen", "59.929", "10.716", "Tine Melk 1L",
		"40,00", "30,00", "2026-09-15",
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, "Kiwi Majorstuen", row.StoreName)
	assert.InDelta(t, 25.0, row.DiscountPercent, 1e-9)
	assert.Equal(t, 2, row.RowNumber)
}

func TestRowFromRecordShortRecord(t *testing.T) {
	cols, err := ResolveColumns([]string{
		"butikk", "breddegrad", "lengdegrad", "produkt",
		"ordinaerpris", "tilbudspris", "utlopsdato",
	})
	require.NoError(t, err)

	// Truncated record: product and later columns missing.
	_, err = RowFromRecord(cols, []string{"Kiwi Majorstuen", "59.929"}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
