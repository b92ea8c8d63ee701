package quiz

import (
	"github.com/mnemos/quiz-service/internal/models"
)

// StateView is a read-only snapshot of a session, safe to hand outside the
// engine. The grading strategy and HTTP layer see this view, never the live
// aggregate.
type StateView struct {
	SessionID      string               `json:"session_id"`
	Phase          models.SessionPhase  `json:"phase"`
	QuestionIndex  int                  `json:"question_index"`
	QuestionCount  int                  `json:"question_count"`
	Question       *QuestionView        `json:"question,omitempty"`
	Attempt        *models.AttemptState `json:"attempt,omitempty"`
	TimeLeft       int                  `json:"time_left"`
	GradingPending bool                 `json:"grading_pending"`
	IsLastQuestion bool                 `json:"is_last_question"`
}

// QuestionView exposes the active question without leaking grading material
// while the question is still open: the correct answer, sample answer and
// proof location only appear in the proof phase.
type QuestionView struct {
	ID                uint                `json:"id"`
	Type              models.QuestionType `json:"type"`
	Prompt            string              `json:"prompt"`
	HasTimeLimit      bool                `json:"has_time_limit"`
	AttemptsRemaining *int                `json:"attempts_remaining,omitempty"` // nil when unlimited

	// Multiple choice only.
	Options []string `json:"options,omitempty"`

	// Short answer only.
	MinLength int `json:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty"`

	// Revealed in the proof phase.
	CorrectAnswer string `json:"correct_answer,omitempty"`
	SampleAnswer  string `json:"sample_answer,omitempty"`
	ProofLocation string `json:"proof_location,omitempty"`
}

func (e *Engine) buildView() StateView {
	view := StateView{
		SessionID:      e.id,
		Phase:          e.phase,
		QuestionIndex:  e.index,
		QuestionCount:  len(e.questions),
		TimeLeft:       e.timeLeft,
		GradingPending: e.grading,
		IsLastQuestion: e.index == len(e.questions)-1,
	}
	if e.phase == models.PhaseComplete {
		return view
	}

	q := e.activeQuestion()
	qv := &QuestionView{
		ID:           q.ID,
		Type:         q.Type,
		Prompt:       q.Prompt,
		HasTimeLimit: q.HasTimeLimit,
	}

	state := e.store.Get(q.ID)
	if state != nil {
		copied := *state
		view.Attempt = &copied
	}

	switch q.Type {
	case models.MultipleChoice:
		if content, err := q.MultipleChoiceContent(); err == nil {
			qv.Options = append(qv.Options, content.Options...)
			if e.phase == models.PhaseProof {
				qv.CorrectAnswer = content.CorrectAnswer
			}
		}
		if max, ok := e.limits[q.ID].Max(); ok {
			used := 0
			if state != nil {
				used = state.AttemptsUsed
			}
			remaining := max - used
			if remaining < 0 {
				remaining = 0
			}
			qv.AttemptsRemaining = &remaining
		}
	case models.ShortAnswer:
		if content, err := q.ShortAnswerContent(); err == nil {
			qv.MinLength = content.MinLength
			qv.MaxLength = content.MaxLength
			if e.phase == models.PhaseProof {
				qv.SampleAnswer = content.SampleAnswer
			}
		}
	}
	if e.phase == models.PhaseProof {
		qv.ProofLocation = q.ProofLocation
	}

	view.Question = qv
	return view
}
