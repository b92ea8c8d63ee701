package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/services"
	"github.com/mnemos/quiz-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// ===== REQUEST STRUCTURES =====

// CreateSessionRequest carries the settings confirmed before a session
// starts. Omitted fields fall back to the defaults.
type CreateSessionRequest struct {
	EnableTimer          *bool  `json:"enable_timer"`
	MCQTimeLimit         *int   `json:"mcq_time_limit"`
	ShortAnswerTimeLimit *int   `json:"short_answer_time_limit"`
	UnlimitedMCQAttempts *bool  `json:"unlimited_mcq_attempts"`
	TestDate             string `json:"test_date"` // YYYY-MM-DD
	Age                  *int   `json:"age"`
}

// AnswerRequest carries an answer update or submission target.
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// QuestionRefRequest names the question an operation applies to.
type QuestionRefRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

func (r *CreateSessionRequest) toConfig() (models.SessionConfig, error) {
	config := models.DefaultSessionConfig()
	if r.EnableTimer != nil {
		config.EnableTimer = *r.EnableTimer
	}
	if r.MCQTimeLimit != nil {
		config.MCQTimeLimit = *r.MCQTimeLimit
	}
	if r.ShortAnswerTimeLimit != nil {
		config.ShortAnswerTimeLimit = *r.ShortAnswerTimeLimit
	}
	if r.UnlimitedMCQAttempts != nil {
		config.UnlimitedMCQAttempts = *r.UnlimitedMCQAttempts
	}
	if r.Age != nil {
		config.Age = *r.Age
	}
	if r.TestDate != "" {
		date, err := time.Parse("2006-01-02", r.TestDate)
		if err != nil {
			return config, err
		}
		config.TestDate = date
	}
	return config, nil
}

// CreateSession starts a new quiz session with the confirmed settings
func (h *SessionHandler) CreateSession(c *gin.Context) {
	h.LogRequest(c, "Creating quiz session")

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	config, err := req.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid test date",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.CreateSession(c.Request.Context(), config)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current state of a session
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessionService.GetSession(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Answer records an answer update for the active question
func (h *SessionHandler) Answer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.Answer(id, req.QuestionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CheckAnswer grades the stored multiple choice answer as one attempt
func (h *SessionHandler) CheckAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req QuestionRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.CheckAnswer(id, req.QuestionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Submit finishes the active question
func (h *SessionHandler) Submit(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req QuestionRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.Submit(id, req.QuestionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Next advances past the proof phase
func (h *SessionHandler) Next(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessionService.Next(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AbandonSession closes a session without recording attempts
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Abandoning session", "session_id", id)

	if err := h.sessionService.AbandonSession(id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "session abandoned"})
}
