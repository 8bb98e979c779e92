package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/handlekurv/deal-service/internal/feed"
	"github.com/handlekurv/deal-service/internal/parsers/csv"
	"github.com/handlekurv/deal-service/internal/parsers/xlsx"
	"github.com/handlekurv/deal-service/internal/planner"
)

// Fetcher downloads feed content from a URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Store persists validated catalog items.
type Store interface {
	InsertItems(ctx context.Context, region string, items []planner.DiscountItem) (int, error)
}

// Invalidator drops a cached region snapshot after new data lands.
type Invalidator interface {
	Invalidate(region string)
}

// IngestStats summarizes one feed ingestion run.
type IngestStats struct {
	TotalRows    int             `json:"totalRows"`
	ParseErrors  int             `json:"parseErrors"`
	Rejected     int             `json:"rejected"`
	Inserted     int             `json:"inserted"`
	RejectedRows []feed.RowError `json:"rejectedRows,omitempty"`
}

// Ingestor downloads discount feeds, validates rows against catalog
// invariants and persists the survivors.
type Ingestor struct {
	fetcher Fetcher
	store   Store
	cache   Invalidator
	metrics *CacheMetrics
	logger  zerolog.Logger
}

// NewIngestor creates a feed ingestor. cache may be nil when running from
// the CLI without a live cache to invalidate.
func NewIngestor(fetcher Fetcher, store Store, cache Invalidator) *Ingestor {
	return &Ingestor{
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		metrics: NewCacheMetrics(),
		logger:  log.With().Str("component", "feed_ingestor").Logger(),
	}
}

// IngestURL downloads a feed and ingests it. The file format is picked from
// the URL extension.
func (i *Ingestor) IngestURL(ctx context.Context, region, url string) (*IngestStats, error) {
	content, err := i.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}
	return i.Ingest(ctx, region, url, content)
}

// Ingest parses raw feed content and persists the valid rows. name is only
// used to pick the parser by extension; unknown extensions default to CSV
// since that is what most chains publish.
func (i *Ingestor) Ingest(ctx context.Context, region, name string, content []byte) (*IngestStats, error) {
	result, err := i.parse(name, content)
	if err != nil {
		return nil, err
	}

	items, rejected := i.validate(result.Rows)

	stats := &IngestStats{
		TotalRows:    result.TotalRows,
		ParseErrors:  len(result.Errors),
		Rejected:     len(rejected),
		RejectedRows: append(result.Errors, rejected...),
	}

	inserted, err := i.store.InsertItems(ctx, region, items)
	stats.Inserted = inserted
	if err != nil {
		return stats, fmt.Errorf("failed to persist feed: %w", err)
	}

	if i.cache != nil && inserted > 0 {
		i.cache.Invalidate(region)
	}

	i.metrics.RecordIngestedRows(inserted, stats.ParseErrors+stats.Rejected)
	i.logger.Info().
		Str("region", region).
		Str("feed", name).
		Int("totalRows", stats.TotalRows).
		Int("inserted", stats.Inserted).
		Int("rejected", stats.Rejected).
		Int("parseErrors", stats.ParseErrors).
		Msg("Ingested discount feed")

	return stats, nil
}

func (i *Ingestor) parse(name string, content []byte) (*feed.ParseResult, error) {
	switch strings.ToLower(path.Ext(stripQuery(name))) {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser().Parse(content)
	default:
		return csv.NewParser(csv.Options{}).Parse(content)
	}
}

// validate converts parsed rows to catalog items, dropping rows that violate
// catalog invariants. A row with a discount at or above the original price is
// not a discount and is rejected rather than silently clamped.
func (i *Ingestor) validate(rows []feed.Row) ([]planner.DiscountItem, []feed.RowError) {
	var items []planner.DiscountItem
	var rejected []feed.RowError

	reject := func(row feed.Row, reason string) {
		rejected = append(rejected, feed.RowError{Row: row.RowNumber, Reason: reason})
	}

	for _, row := range rows {
		switch {
		case strings.TrimSpace(row.ProductName) == "":
			reject(row, "missing product name")
		case strings.TrimSpace(row.StoreName) == "":
			reject(row, "missing store name")
		case row.OriginalPrice <= 0:
			reject(row, "original price must be positive")
		case row.DiscountPrice <= 0:
			reject(row, "discount price must be positive")
		case row.DiscountPrice >= row.OriginalPrice:
			reject(row, "discount price must be below original price")
		case row.ExpiresAt.IsZero():
			reject(row, "missing expiry date")
		case row.ExpiresAt.Before(time.Now()):
			reject(row, "already expired")
		default:
			items = append(items, planner.DiscountItem{
				ProductName:  row.ProductName,
				StoreName:    row.StoreName,
				StoreAddress: row.StoreAddress,
				StoreLocation: planner.Location{
					Latitude:  row.Latitude,
					Longitude: row.Longitude,
				},
				OriginalPrice:   row.OriginalPrice,
				DiscountPrice:   row.DiscountPrice,
				DiscountPercent: row.DiscountPercent,
				ExpiresAt:       row.ExpiresAt,
				IsOrganic:       row.IsOrganic,
			})
		}
	}

	return items, rejected
}

func stripQuery(name string) string {
	if idx := strings.IndexByte(name, '?'); idx >= 0 {
		return name[:idx]
	}
	return name
}
