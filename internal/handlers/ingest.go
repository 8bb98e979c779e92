package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/handlekurv/deal-service/internal/catalog"
)

// ingestSem limits concurrent ingestion runs. Feed files are small but the
// per-row validation and batch insert are not free.
var ingestSem = make(chan struct{}, 4)

var feedIngestor *catalog.Ingestor

// InitIngestor wires the feed ingestor into the handlers.
func InitIngestor(ingestor *catalog.Ingestor) {
	feedIngestor = ingestor
}

// IngestFeedRequest is the body for triggering a feed ingestion.
type IngestFeedRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// IngestFeed downloads and ingests a discount feed for a region, returning
// 202 immediately. The download and parse run in the background.
// POST /internal/admin/ingest/:region
func IngestFeed(c *gin.Context) {
	region := c.Param("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required"})
		return
	}

	var req IngestFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if feedIngestor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingestor not initialized"})
		return
	}

	go func() {
		ingestSem <- struct{}{}
		defer func() { <-ingestSem }()

		// The request context dies with the 202; ingestion runs on its own.
		stats, err := feedIngestor.IngestURL(context.Background(), region, req.URL)
		if err != nil {
			log.Error().Err(err).Str("region", region).Str("url", req.URL).Msg("Feed ingestion failed")
			return
		}
		log.Info().
			Str("region", region).
			Int("inserted", stats.Inserted).
			Int("rejected", stats.Rejected).
			Msg("Feed ingestion finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "started",
		"region": region,
	})
}
