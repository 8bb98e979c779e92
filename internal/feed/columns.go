package feed

import (
	"fmt"

	"github.com/handlekurv/deal-service/internal/textnorm"
)

// Columns holds the resolved column index of every feed field; -1 marks a
// column that the feed does not carry.
type Columns struct {
	Store    int
	Address  int
	Lat      int
	Lon      int
	Product  int
	Original int
	Discount int
	Percent  int
	Expires  int
	Organic  int
}

// columnAliases maps folded header names to feed fields. Chains name their
// columns in Norwegian or English depending on which export produced the
// file; headers are folded before lookup so diacritics and casing never
// matter ("Utløpsdato" and "UTLOPSDATO" resolve identically).
var columnAliases = map[string]string{
	"butikk":     "store",
	"butikknavn": "store",
	"store":      "store",
	"store name": "store",

	"adresse": "address",
	"address": "address",

	"breddegrad": "lat",
	"lat":        "lat",
	"latitude":   "lat",

	"lengdegrad": "lon",
	"lon":        "lon",
	"lng":        "lon",
	"longitude":  "lon",

	"produkt":      "product",
	"produktnavn":  "product",
	"vare":         "product",
	"varenavn":     "product",
	"product":      "product",
	"product name": "product",

	"ordinaerpris":   "original",
	"forpris":        "original",
	"original price": "original",

	"tilbudspris":    "discount",
	"kampanjepris":   "discount",
	"discount price": "discount",

	"rabatt":           "percent",
	"rabatt prosent":   "percent",
	"discount percent": "percent",

	"utlopsdato": "expires",
	"gyldig til": "expires",
	"expires":    "expires",
	"expires at": "expires",

	"okologisk": "organic",
	"organic":   "organic",
}

// requiredFields must all resolve for a feed to be ingestible.
var requiredFields = []string{"store", "lat", "lon", "product", "original", "discount", "expires"}

// ResolveColumns maps a header row to column indexes. Underscores and
// hyphens in headers are treated as spaces before alias lookup.
func ResolveColumns(headers []string) (Columns, error) {
	cols := Columns{
		Store: -1, Address: -1, Lat: -1, Lon: -1, Product: -1,
		Original: -1, Discount: -1, Percent: -1, Expires: -1, Organic: -1,
	}

	for i, h := range headers {
		key := textnorm.Fold(replaceSeparators(h))
		field, ok := columnAliases[key]
		if !ok {
			continue
		}
		switch field {
		case "store":
			cols.Store = i
		case "address":
			cols.Address = i
		case "lat":
			cols.Lat = i
		case "lon":
			cols.Lon = i
		case "product":
			cols.Product = i
		case "original":
			cols.Original = i
		case "discount":
			cols.Discount = i
		case "percent":
			cols.Percent = i
		case "expires":
			cols.Expires = i
		case "organic":
			cols.Organic = i
		}
	}

	missing := missingFields(cols)
	if len(missing) > 0 {
		return cols, fmt.Errorf("feed header is missing required columns: %v", missing)
	}
	return cols, nil
}

func replaceSeparators(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '_' || r == '-' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

func missingFields(cols Columns) []string {
	present := map[string]bool{
		"store":    cols.Store >= 0,
		"lat":      cols.Lat >= 0,
		"lon":      cols.Lon >= 0,
		"product":  cols.Product >= 0,
		"original": cols.Original >= 0,
		"discount": cols.Discount >= 0,
		"expires":  cols.Expires >= 0,
	}
	var missing []string
	for _, f := range requiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// RowFromRecord builds a Row from one data record using resolved columns.
// rowNumber is the 1-based position in the source file, used in error
// reporting and audit logs.
func RowFromRecord(cols Columns, record []string, rowNumber int) (Row, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	row := Row{
		StoreName:    field(cols.Store),
		StoreAddress: field(cols.Address),
		ProductName:  field(cols.Product),
		RowNumber:    rowNumber,
	}

	if row.StoreName == "" {
		return row, fmt.Errorf("row %d: empty store name", rowNumber)
	}
	if row.ProductName == "" {
		return row, fmt.Errorf("row %d: empty product name", rowNumber)
	}

	var err error
	if row.Latitude, err = ParseCoordinate(field(cols.Lat), -90, 90); err != nil {
		return row, fmt.Errorf("row %d: latitude: %w", rowNumber, err)
	}
	if row.Longitude, err = ParseCoordinate(field(cols.Lon), -180, 180); err != nil {
		return row, fmt.Errorf("row %d: longitude: %w", rowNumber, err)
	}
	if row.OriginalPrice, err = ParsePrice(field(cols.Original)); err != nil {
		return row, fmt.Errorf("row %d: original price: %w", rowNumber, err)
	}
	if row.DiscountPrice, err = ParsePrice(field(cols.Discount)); err != nil {
		return row, fmt.Errorf("row %d: discount price: %w", rowNumber, err)
	}
	if row.ExpiresAt, err = ParseDate(field(cols.Expires)); err != nil {
		return row, fmt.Errorf("row %d: expiry date: %w", rowNumber, err)
	}

	if cols.Percent >= 0 && field(cols.Percent) != "" {
		if row.DiscountPercent, err = ParsePrice(field(cols.Percent)); err != nil {
			return row, fmt.Errorf("row %d: discount percent: %w", rowNumber, err)
		}
	} else if row.OriginalPrice > 0 {
		row.DiscountPercent = (row.OriginalPrice - row.DiscountPrice) / row.OriginalPrice * 100
	}

	row.IsOrganic = ParseBoolish(field(cols.Organic))

	return row, nil
}
