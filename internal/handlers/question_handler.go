package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/services"
	"github.com/mnemos/quiz-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestionRequest carries a new question and its variant content.
type CreateQuestionRequest struct {
	Type          models.QuestionType `json:"type" binding:"required" validate:"question_type"`
	Prompt        string              `json:"prompt" binding:"required"`
	MaxAttempts   *int                `json:"max_attempts"`
	ProofLocation string              `json:"proof_location"`
	Content       interface{}         `json:"content" binding:"required"`
}

// CreateQuestion adds a question to the bank
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question := &models.Question{
		Type:          req.Type,
		Prompt:        req.Prompt,
		MaxAttempts:   req.MaxAttempts,
		ProofLocation: req.ProofLocation,
	}
	if err := question.SetContent(req.Content); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid content format",
			Details: err.Error(),
		})
		return
	}

	if err := h.questionService.CreateQuestion(c.Request.Context(), question); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ListQuestions returns the full ordered question set
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.FetchQuestions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// GetQuestion retrieves a question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseUintParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}
