package scoring

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mnemos/quiz-service/internal/utils"
)

const scoringSystemPrompt = `You grade short free-text quiz answers. Compare the user's answer ` +
	`against the reference answer and reply with a single decimal number between 0 and 1, ` +
	`where 1 means the answer is fully correct and 0 means it is entirely wrong. ` +
	`Judge meaning, not wording. Reply with the number only.`

// OpenAIScorer scores free-text answers against a reference answer with a
// chat completion. It implements quiz.FreeTextScorer.
type OpenAIScorer struct {
	client *openai.Client
	model  string
	logger utils.Logger
}

// OpenAIConfig configures the scorer client.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible APIs
	Timeout time.Duration
}

// NewOpenAIScorer creates a new OpenAI-backed scorer. The HTTP client carries
// its own timeout so a stuck completion cannot hold a session open.
func NewOpenAIScorer(cfg OpenAIConfig, logger utils.Logger) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.HTTPClient = &http.Client{Timeout: timeout}
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}, nil
}

// Score returns an accuracy score in [0,1] for the user's answer.
func (s *OpenAIScorer) Score(ctx context.Context, userAnswer, referenceAnswer string) (float64, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		MaxTokens:   8,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: scoringSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Reference answer: %s\n\nUser answer: %s", referenceAnswer, userAnswer),
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no choices in completion response")
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("unparseable score from model",
			"model", s.model,
			"content", resp.Choices[0].Message.Content)
		return 0, err
	}
	return score, nil
}

// parseScore extracts a [0,1] score from the model output. Values on a
// 0-100 scale are accepted and normalized, since models occasionally answer
// in percent despite the prompt.
func parseScore(content string) (float64, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimSuffix(trimmed, "%")
	trimmed = strings.TrimSpace(trimmed)

	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", content, err)
	}

	if score > 1 && score <= 100 {
		score = score / 100
	}
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score, nil
}
