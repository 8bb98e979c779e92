package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/handlekurv/deal-service/internal/planner"
	"github.com/handlekurv/deal-service/internal/textnorm"
)

const defaultSearchLimit = 50

// CatalogSearchResponse is the catalog item search response body.
type CatalogSearchResponse struct {
	Region string                 `json:"region"`
	Total  int                    `json:"total"`
	Items  []planner.DiscountItem `json:"items"`
}

// SearchItems returns active catalog items for a region, optionally filtered
// by a folded substring match on the product name. Matching uses the same
// normalization as the plan engine, so "okologisk" finds "Økologisk".
// GET /v1/catalog/items?region=oslo&q=melk&organic=true&limit=20
func SearchItems(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	var organicOnly bool
	if raw := c.Query("organic"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organic must be a boolean"})
			return
		}
		organicOnly = parsed
	}

	if catalogSource == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not initialized"})
		return
	}

	items, err := catalogSource.Snapshot(c.Request.Context(), region)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable: " + err.Error()})
		return
	}

	query := textnorm.Fold(c.Query("q"))
	matched := make([]planner.DiscountItem, 0, limit)
	total := 0
	for _, item := range items {
		if organicOnly && !item.IsOrganic {
			continue
		}
		if query != "" && !strings.Contains(textnorm.Fold(item.ProductName), query) {
			continue
		}
		total++
		if len(matched) < limit {
			matched = append(matched, item)
		}
	}

	c.JSON(http.StatusOK, CatalogSearchResponse{
		Region: region,
		Total:  total,
		Items:  matched,
	})
}
