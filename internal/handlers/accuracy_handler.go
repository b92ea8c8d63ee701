package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/quiz"
	"github.com/mnemos/quiz-service/internal/utils"
)

// AccuracyHandler exposes the free-text scorer directly, outside any
// session, for ad hoc answer checking.
type AccuracyHandler struct {
	BaseHandler
	scorer quiz.FreeTextScorer
}

func NewAccuracyHandler(scorer quiz.FreeTextScorer, logger utils.Logger) *AccuracyHandler {
	return &AccuracyHandler{
		BaseHandler: NewBaseHandler(logger),
		scorer:      scorer,
	}
}

type AccuracyRequest struct {
	Answer    string `json:"answer" binding:"required"`
	Reference string `json:"reference" binding:"required"`
}

type AccuracyResponse struct {
	Accuracy float64 `json:"accuracy"` // [0,1]
}

// ScoreAnswer grades one free-text answer against a reference answer
func (h *AccuracyHandler) ScoreAnswer(c *gin.Context) {
	var req AccuracyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	score, err := h.scorer.Score(c.Request.Context(), req.Answer, req.Reference)
	if err != nil {
		h.LogError(c, err, "Free text scoring failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Scoring failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, AccuracyResponse{Accuracy: score})
}
