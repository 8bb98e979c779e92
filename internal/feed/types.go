// Package feed defines the normalized row format shared by the discount-feed
// parsers. Retail chains publish weekly discount lists as CSV or XLSX; the
// parsers turn whichever arrives into Rows before ingestion validates and
// persists them.
package feed

import "time"

// Format identifies a supported feed file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Row is one normalized discount entry from a chain's feed.
type Row struct {
	StoreName       string    `json:"storeName"`
	StoreAddress    string    `json:"storeAddress,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	ProductName     string    `json:"productName"`
	OriginalPrice   float64   `json:"originalPrice"`
	DiscountPrice   float64   `json:"discountPrice"`
	DiscountPercent float64   `json:"discountPercent"`
	ExpiresAt       time.Time `json:"expiresAt"`
	IsOrganic       bool      `json:"isOrganic"`
	RowNumber       int       `json:"rowNumber"`
}

// RowError records why a single feed row was dropped during parsing.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing one feed file.
type ParseResult struct {
	Rows      []Row      `json:"rows"`
	TotalRows int        `json:"totalRows"`
	ValidRows int        `json:"validRows"`
	Errors    []RowError `json:"errors,omitempty"`
}
