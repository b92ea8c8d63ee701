package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mnemos/quiz-service/internal/cache"
	"github.com/mnemos/quiz-service/internal/config"
	"github.com/mnemos/quiz-service/internal/handlers"
	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/quiz"
	"github.com/mnemos/quiz-service/internal/repositories/postgres"
	"github.com/mnemos/quiz-service/internal/scoring"
	"github.com/mnemos/quiz-service/internal/services"
	"github.com/mnemos/quiz-service/internal/utils"
	"github.com/mnemos/quiz-service/internal/validator"
	"github.com/mnemos/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Question{}, &models.AttemptRecord{}); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("event publisher init failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	var scorer quiz.FreeTextScorer
	if cfg.OpenAIKey != "" {
		scorer, err = scoring.NewOpenAIScorer(scoring.OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.OpenAIModel,
		}, logger)
		if err != nil {
			logger.Error("scorer init failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no OpenAI key configured, using static scorer")
		scorer = scoring.NewStaticScorer()
	}

	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, logger)
	questionRepo := postgres.NewQuestionPostgreSQL(db)
	attemptRepo := postgres.NewAttemptPostgreSQL(db)

	questionService := services.NewQuestionService(questionRepo, cacheService, v, logger)
	sessionService := services.NewSessionService(questionService, scorer, attemptRepo, publisher, v, logger)
	resultService := services.NewResultService(attemptRepo, logger)
	defer sessionService.Shutdown()

	if cfg.SeedFile != "" {
		if err := seedQuestions(questionService, cfg.SeedFile, logger); err != nil {
			logger.Error("question seeding failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(sessionService, questionService, resultService, scorer, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("quiz service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// seedQuestions loads a JSON question set from disk and inserts it into an
// empty question bank. A bank that already holds questions is left alone.
func seedQuestions(svc *services.QuestionService, path string, logger utils.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	logger.Info("seeding question bank", "file", path, "questions", len(questions))
	return svc.SeedQuestions(context.Background(), questions)
}
