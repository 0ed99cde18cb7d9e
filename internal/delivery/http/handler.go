package http

import (
	"errors"
	"net/http"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/caloriecart/backend/internal/infrastructure/flatfile"
	"github.com/caloriecart/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// maxUploadBytes bounds CSV and JSON request bodies.
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine *usecase.RankingEngine
}

// NewHandler creates a new HTTP handler. A nil engine uses the default tiers.
func NewHandler(engine *usecase.RankingEngine) *Handler {
	if engine == nil {
		engine = usecase.NewRankingEngine(usecase.RankingConfig{})
	}
	return &Handler{engine: engine}
}

// RankRequest is the JSON body of POST /api/v1/rank.
type RankRequest struct {
	Rows []domain.ProductNutritionRow `json:"rows"`
	// Match keeps only rows whose description fuzzily contains it.
	Match string `json:"match,omitempty"`
}

// RankResponse is the JSON answer of POST /api/v1/rank.
type RankResponse struct {
	Count int                `json:"count"`
	Rows  []domain.RankedRow `json:"rows"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "caloriecart-backend",
		"version": "1.0.0",
	})
}

// RankJSON ranks the rows of a JSON request by calories per dollar
func (h *Handler) RankJSON(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rows := usecase.FilterByDescription(req.Rows, req.Match)
	if err := h.engine.Validate(rows); err != nil {
		h.respondError(c, err)
		return
	}

	ranked := h.engine.Rank(rows)
	c.JSON(http.StatusOK, RankResponse{Count: len(ranked), Rows: ranked})
}

// RankCSV ranks an uploaded CSV table and answers with the table plus calories_per_dollar.
// The optional match query parameter filters by description.
func (h *Handler) RankCSV(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	table, err := flatfile.ReadCSV(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := usecase.FilterByDescription(table.Rows, c.Query("match"))
	if err := h.engine.Validate(rows); err != nil {
		h.respondError(c, err)
		return
	}

	ranked := h.engine.Rank(rows)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := flatfile.WriteRankedCSV(c.Writer, table.Columns, ranked); err != nil {
		log.WithError(err).Error("failed to write ranked CSV")
	}
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("ranking request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
