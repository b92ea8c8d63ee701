package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/quiz"
	"github.com/mnemos/quiz-service/internal/services"
	"github.com/mnemos/quiz-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	questionHandler *QuestionHandler
	resultHandler   *ResultHandler
	accuracyHandler *AccuracyHandler
}

func NewHandlerManager(
	sessionService *services.SessionService,
	questionService *services.QuestionService,
	resultService *services.ResultService,
	scorer quiz.FreeTextScorer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(sessionService, logger),
		questionHandler: NewQuestionHandler(questionService, logger),
		resultHandler:   NewResultHandler(resultService, logger),
		accuracyHandler: NewAccuracyHandler(scorer, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/answer", hm.sessionHandler.Answer)
			sessions.POST("/:id/check", hm.sessionHandler.CheckAnswer)
			sessions.POST("/:id/submit", hm.sessionHandler.Submit)
			sessions.POST("/:id/next", hm.sessionHandler.Next)
			sessions.DELETE("/:id", hm.sessionHandler.AbandonSession)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.GET("/days", hm.resultHandler.ListDays)
			results.GET("/export", hm.resultHandler.ExportResults)
			results.GET("/:day", hm.resultHandler.GetDayResults)
		}

		// Standalone scoring
		v1.POST("/accuracy", hm.accuracyHandler.ScoreAnswer)
	}
}
