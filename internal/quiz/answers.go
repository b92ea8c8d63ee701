package quiz

import (
	"github.com/mnemos/quiz-service/internal/models"
)

// AnswerStore maps question IDs to their attempt state. It is owned
// exclusively by the session engine's event loop; nothing else mutates it.
// History is retained after the engine moves past a question so the attempt
// recorder can see every question at session end.
type AnswerStore struct {
	states map[uint]*models.AttemptState
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		states: make(map[uint]*models.AttemptState),
	}
}

// SetAnswer upserts the current answer for a question. For multiple choice
// the correctness and submission flags go back to pending until the answer
// is re-evaluated.
func (s *AnswerStore) SetAnswer(questionID uint, questionType models.QuestionType, text string) *models.AttemptState {
	state := s.GetOrCreate(questionID)
	state.CurrentAnswer = text
	if questionType == models.MultipleChoice {
		state.IsCorrect = nil
		state.Submitted = false
	}
	return state
}

// Get returns the attempt state for a question, or nil if it was never
// touched.
func (s *AnswerStore) Get(questionID uint) *models.AttemptState {
	return s.states[questionID]
}

// GetOrCreate returns the attempt state for a question, creating an empty
// one on first use.
func (s *AnswerStore) GetOrCreate(questionID uint) *models.AttemptState {
	if state, ok := s.states[questionID]; ok {
		return state
	}
	state := &models.AttemptState{QuestionID: questionID}
	s.states[questionID] = state
	return state
}

// Snapshot returns a copy of every attempt state, keyed by question ID.
func (s *AnswerStore) Snapshot() map[uint]models.AttemptState {
	out := make(map[uint]models.AttemptState, len(s.states))
	for id, state := range s.states {
		out[id] = *state
	}
	return out
}
