package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handlekurv/deal-service/internal/planner"
)

func setupCatalogRouter(t *testing.T, items []planner.DiscountItem, sourceErr error) *gin.Engine {
	t.Helper()
	InitPlanner(
		planner.NewOptimizer(planner.Defaults(), nil),
		&staticSource{items: items, err: sourceErr},
		nil,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/catalog/items", SearchItems)
	return router
}

func getItems(t *testing.T, router *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/v1/catalog/items?"+query, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func catalogFixture() []planner.DiscountItem {
	expires := time.Now().AddDate(0, 0, 14)
	return []planner.DiscountItem{
		{ProductName: "Tine Melk 1L", StoreName: "Kiwi Majorstuen", OriginalPrice: 25.90, DiscountPrice: 19.90, ExpiresAt: expires},
		{ProductName: "Økologisk Melk 1L", StoreName: "Meny Frogner", OriginalPrice: 32.90, DiscountPrice: 26.90, ExpiresAt: expires, IsOrganic: true},
		{ProductName: "Gulost Norvegia", StoreName: "Rema 1000 Sagene", OriginalPrice: 99.90, DiscountPrice: 79.90, ExpiresAt: expires},
	}
}

func TestSearchItemsFiltersByQuery(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "region=oslo&q=melk")
	assert.Equal(t, http.StatusOK, w.Code)

	var response CatalogSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "oslo", response.Region)
	assert.Equal(t, 2, response.Total)
	require.Len(t, response.Items, 2)
	assert.Equal(t, "Tine Melk 1L", response.Items[0].ProductName)
}

func TestSearchItemsFoldsDiacritics(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "region=oslo&q=okologisk")
	assert.Equal(t, http.StatusOK, w.Code)

	var response CatalogSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Økologisk Melk 1L", response.Items[0].ProductName)
}

func TestSearchItemsOrganicOnly(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "region=oslo&organic=true")
	assert.Equal(t, http.StatusOK, w.Code)

	var response CatalogSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	assert.True(t, response.Items[0].IsOrganic)
}

func TestSearchItemsRespectsLimit(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "region=oslo&limit=2")
	assert.Equal(t, http.StatusOK, w.Code)

	var response CatalogSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Total)
	assert.Len(t, response.Items, 2)
}

func TestSearchItemsRejectsMissingRegion(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "q=melk")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchItemsRejectsBadLimit(t *testing.T) {
	router := setupCatalogRouter(t, catalogFixture(), nil)

	w := getItems(t, router, "region=oslo&limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchItemsCatalogUnavailable(t *testing.T) {
	router := setupCatalogRouter(t, nil, errors.New("breaker open"))

	w := getItems(t, router, "region=oslo")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
