// Package handlers wires the shopping plan engine and catalog to the HTTP
// API. Request and response DTOs live here so the engine types never leak
// JSON concerns.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/planner"
)

// LocationDTO is a geographic coordinate pair.
type LocationDTO struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// TimeframeDTO is the shopping window in which purchases may happen.
type TimeframeDTO struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// PreferencesDTO selects which optimization criteria are active.
type PreferencesDTO struct {
	MaximizeSavings bool `json:"maximizeSavings"`
	MinimizeStores  bool `json:"minimizeStores"`
	PreferOrganic   bool `json:"preferOrganic"`
}

// OptimizeRequest is the shopping plan request body.
type OptimizeRequest struct {
	Region        string         `json:"region" binding:"required"`
	Ingredients   []string       `json:"ingredients" binding:"required,min=1,max=100"`
	Location      LocationDTO    `json:"location" binding:"required"`
	Timeframe     TimeframeDTO   `json:"timeframe" binding:"required"`
	Preferences   PreferencesDTO `json:"preferences"`
	MaxDistanceKm float64        `json:"maxDistanceKm,omitempty"`
}

// PurchaseDTO is one planned purchase in the response.
type PurchaseDTO struct {
	Ingredient  string    `json:"ingredient"`
	ProductName string    `json:"productName"`
	StoreName   string    `json:"storeName"`
	PurchaseDay time.Time `json:"purchaseDay"`
	Price       float64   `json:"price"`
	Savings     float64   `json:"savings"`
}

// OptimizeResponse is the shopping plan response body.
type OptimizeResponse struct {
	Purchases        []PurchaseDTO `json:"purchases"`
	Unmatched        []string      `json:"unmatched,omitempty"`
	TotalSavings     float64       `json:"totalSavings"`
	TimeSavingsHours float64       `json:"timeSavingsHours"`
	StoreCount       int           `json:"storeCount"`
}

// Shared instances, set up during application startup.
var (
	plannerOptimizer *planner.Optimizer
	catalogSource    catalog.Source
	catalogCache     *catalog.Cache
)

// InitPlanner wires the plan optimizer and catalog source into the handlers.
// cache may be nil when serving from a static snapshot source in tests.
func InitPlanner(opt *planner.Optimizer, source catalog.Source, cache *catalog.Cache) {
	plannerOptimizer = opt
	catalogSource = source
	catalogCache = cache
}

// Optimize handles shopping plan requests.
// POST /v1/plan/optimize
func Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if plannerOptimizer == nil || catalogSource == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Planner not initialized"})
		return
	}

	items, err := catalogSource.Snapshot(c.Request.Context(), req.Region)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable: " + err.Error()})
		return
	}

	plan, err := plannerOptimizer.Plan(c.Request.Context(), &planner.PlanRequest{
		Ingredients: req.Ingredients,
		Catalog:     items,
		Location: planner.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		},
		Timeframe: planner.Timeframe{
			Start: req.Timeframe.Start,
			End:   req.Timeframe.End,
		},
		Preferences: planner.Preferences{
			MaximizeSavings: req.Preferences.MaximizeSavings,
			MinimizeStores:  req.Preferences.MinimizeStores,
			PreferOrganic:   req.Preferences.PreferOrganic,
		},
		MaxDistanceKm: req.MaxDistanceKm,
	})
	if err != nil {
		var invalid planner.ErrInvalidRequest
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	purchases := make([]PurchaseDTO, len(plan.Purchases))
	for i, p := range plan.Purchases {
		purchases[i] = PurchaseDTO{
			Ingredient:  p.Ingredient,
			ProductName: p.ProductName,
			StoreName:   p.StoreName,
			PurchaseDay: p.PurchaseDay,
			Price:       p.Price,
			Savings:     p.Savings,
		}
	}

	c.JSON(http.StatusOK, OptimizeResponse{
		Purchases:        purchases,
		Unmatched:        plan.Unmatched,
		TotalSavings:     plan.TotalSavings,
		TimeSavingsHours: plan.TimeSavingsHours,
		StoreCount:       plan.StoreCount(),
	})
}

// CacheWarmup loads all region snapshots into the catalog cache.
// POST /internal/catalog/cache/warmup
func CacheWarmup(c *gin.Context) {
	if catalogCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cache not initialized"})
		return
	}

	if err := catalogCache.Warmup(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to warm up cache: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CacheRefresh invalidates one region's snapshot so the next request reloads.
// POST /internal/catalog/cache/refresh/:region
func CacheRefresh(c *gin.Context) {
	region := c.Param("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required"})
		return
	}

	if catalogCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cache not initialized"})
		return
	}

	catalogCache.Invalidate(region)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "region": region})
}
