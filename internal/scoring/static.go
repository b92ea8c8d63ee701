package scoring

import (
	"context"
	"strings"
)

// StaticScorer grades free-text answers without an external model. It is the
// fallback when no API key is configured: exact match scores 1, a case
// insensitive match 0.9, anything else 0.
type StaticScorer struct{}

func NewStaticScorer() *StaticScorer {
	return &StaticScorer{}
}

func (s *StaticScorer) Score(ctx context.Context, userAnswer, referenceAnswer string) (float64, error) {
	if userAnswer == referenceAnswer {
		return 1, nil
	}
	if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(referenceAnswer)) {
		return 0.9, nil
	}
	return 0, nil
}
