// Package catalog owns the discount catalog: Postgres persistence, the
// in-memory snapshot cache the planning engine reads from, and feed
// ingestion. The engine itself never touches this package; it receives an
// immutable snapshot per request.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/handlekurv/deal-service/internal/planner"
)

// Source provides immutable catalog snapshots per region. Snapshot order is
// deterministic so identical requests yield identical plans.
type Source interface {
	Snapshot(ctx context.Context, region string) ([]planner.DiscountItem, error)
}

// Repository loads and stores discount catalog rows in Postgres.
type Repository struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a catalog repository on the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:     db,
		logger: log.With().Str("component", "catalog_repository").Logger(),
	}
}

// Snapshot loads every non-expired discount item for a region, ordered by
// store then product name so snapshots are deterministic.
func (r *Repository) Snapshot(ctx context.Context, region string) ([]planner.DiscountItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_name, store_name, store_address,
		       latitude, longitude,
		       original_price, discount_price, discount_percent,
		       expires_at, is_organic
		FROM discount_items
		WHERE region = $1 AND expires_at >= now()
		ORDER BY store_name, product_name, expires_at`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query discount items: %w", err)
	}
	defer rows.Close()

	var items []planner.DiscountItem
	for rows.Next() {
		var item planner.DiscountItem
		if err := rows.Scan(
			&item.ProductName,
			&item.StoreName,
			&item.StoreAddress,
			&item.StoreLocation.Latitude,
			&item.StoreLocation.Longitude,
			&item.OriginalPrice,
			&item.DiscountPrice,
			&item.DiscountPercent,
			&item.ExpiresAt,
			&item.IsOrganic,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discount item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read discount items: %w", err)
	}

	return items, nil
}

// Regions returns every region that currently has catalog rows.
func (r *Repository) Regions(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT region FROM discount_items ORDER BY region`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

// InsertItems bulk-inserts catalog items for a region. Existing rows with
// the same region, store and product are replaced so re-ingesting a feed is
// idempotent.
func (r *Repository) InsertItems(ctx context.Context, region string, items []planner.DiscountItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO discount_items
				(region, product_name, store_name, store_address,
				 latitude, longitude,
				 original_price, discount_price, discount_percent,
				 expires_at, is_organic)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (region, store_name, product_name)
			DO UPDATE SET
				store_address = EXCLUDED.store_address,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				original_price = EXCLUDED.original_price,
				discount_price = EXCLUDED.discount_price,
				discount_percent = EXCLUDED.discount_percent,
				expires_at = EXCLUDED.expires_at,
				is_organic = EXCLUDED.is_organic`,
			region,
			item.ProductName,
			item.StoreName,
			item.StoreAddress,
			item.StoreLocation.Latitude,
			item.StoreLocation.Longitude,
			item.OriginalPrice,
			item.DiscountPrice,
			item.DiscountPercent,
			item.ExpiresAt,
			item.IsOrganic,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range items {
		if _, err := results.Exec(); err != nil {
			return inserted, fmt.Errorf("failed to insert discount item: %w", err)
		}
		inserted++
	}

	r.logger.Info().
		Str("region", region).
		Int("items", inserted).
		Msg("Inserted catalog items")

	return inserted, nil
}

// DeleteExpired removes items that expired before the cutoff.
func (r *Repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM discount_items WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired items: %w", err)
	}
	return tag.RowsAffected(), nil
}
