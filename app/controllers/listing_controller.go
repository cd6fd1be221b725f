package controllers

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listing-parser/app/config"
	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/app/responses"
	"github.com/listing-parser/app/services"
)

// ListingController serves parse and batch job requests.
type ListingController struct {
	listings    *services.ListingService
	maxListings int
	logger      *zap.Logger
}

// NewListingController creates a ListingController. maxListings bounds one job.
func NewListingController(listings *services.ListingService, maxListings int, logger *zap.Logger) *ListingController {
	if maxListings <= 0 {
		maxListings = 20000
	}
	return &ListingController{listings: listings, maxListings: maxListings, logger: logger}
}

// ParseListing parses one listing.
func (lc *ListingController) ParseListing(c *gin.Context) {
	var req requests.ParseListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	start := time.Now()
	result, hit, err := lc.listings.Parse(ctx, req.Text, req.Options)
	if err != nil {
		lc.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.ParseListingResponse{
		Result:           *result,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		CacheHit:         hit,
	})
}

// BatchParse accepts a batch job.
func (lc *ListingController) BatchParse(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}
	if len(req.Texts) > lc.maxListings {
		abortWithError(c, http.StatusBadRequest, "TOO_MANY_LISTINGS", "A job holds at most "+strconv.Itoa(lc.maxListings)+" listings")
		return
	}

	jobID, err := lc.listings.SubmitJob(req.Texts, req.Options)
	if err != nil {
		lc.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, responses.BatchParseResponse{
		JobID:            jobID,
		EstimatedSeconds: lc.listings.EstimateBatchProcessingTime(len(req.Texts)),
		TotalListings:    len(req.Texts),
		Message:          "Job accepted",
	})
}

// GetJobStatus reports job progress.
func (lc *ListingController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	status, err := lc.listings.GetJobStatus(jobID)
	if err != nil {
		lc.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:     jobID,
		Status:    status.Status,
		Progress:  status.Progress,
		Processed: status.Processed,
		Total:     status.Total,
		Message:   status.Message,
	})
}

// GetJobResults returns job results as JSON, or as NDJSON with ?format=ndjson
// (gzip compressed with &gzip=1).
func (lc *ListingController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	if c.Query("format") == "ndjson" {
		lc.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := lc.listings.GetJobResults(jobID)
	if err != nil {
		lc.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Job results",
		Data:      results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheck reports liveness and the optional backends.
func (lc *ListingController) HealthCheck(c *gin.Context) {
	cache := "disabled"
	if stats, err := lc.listings.CacheStats(c.Request.Context()); err != nil {
		cache = "unhealthy"
	} else if stats != nil {
		cache = "healthy"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(lc.listings.GetStartTime()).Round(time.Second).String(),
		Version:   lc.listings.RulesVersion(),
		Services: map[string]string{
			"parser": "healthy",
			"cache":  cache,
		},
	})
}

func (lc *ListingController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	stream, err := lc.listings.GetJobResultsStream(c.Request.Context(), jobID)
	if err != nil {
		lc.writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gz}
	}
	c.Status(http.StatusOK)

	if err := services.WriteNDJSON(writer, stream); err != nil {
		lc.logger.Error("NDJSON stream aborted", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (lc *ListingController) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOptions):
		abortWithError(c, http.StatusBadRequest, "INVALID_OPTIONS", err.Error())
	case errors.Is(err, services.ErrEmptyBatch):
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, services.ErrJobNotFound):
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrJobNotFinished):
		abortWithError(c, http.StatusConflict, "JOB_NOT_FINISHED", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	default:
		lc.logger.Error("Listing request failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "PARSE_ERROR", err.Error())
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gzWriter.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}
