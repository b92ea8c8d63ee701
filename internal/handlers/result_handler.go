package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/services"
	"github.com/mnemos/quiz-service/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	resultService *services.ResultService
}

func NewResultHandler(resultService *services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// ListDays returns every day with recorded attempts
func (h *ResultHandler) ListDays(c *gin.Context) {
	days, err := h.resultService.ListDays(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// GetDayResults returns records and aggregates for one day
func (h *ResultHandler) GetDayResults(c *gin.Context) {
	day := ParseStringIDParam(c, "day")
	if day == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid day",
			Details: "expected YYYY-MM-DD",
		})
		return
	}

	results, err := h.resultService.GetDayResults(c.Request.Context(), day)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportResults streams all recorded attempts as an Excel workbook
func (h *ResultHandler) ExportResults(c *gin.Context) {
	h.LogRequest(c, "Exporting attempt records")

	data, err := h.resultService.ExportResults(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-results-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
