package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mnemos/quiz-service/internal/models"
)

type eventKind int

const (
	evAnswer eventKind = iota
	evCheck
	evSubmit
	evAutoSubmit
	evTick
	evExpire
	evGradeResult
	evNext
	evSnapshot
)

// event is one unit of work for the engine's loop. Events carrying a reply
// channel are synchronous from the caller's point of view; the rest
// (ticks, expiry, grading results, scheduled auto-submits) are posted by
// background goroutines and processed in arrival order.
type event struct {
	kind       eventKind
	questionID uint
	text       string
	score      float64
	scoreErr   error
	remaining  int
	reply      chan error
	view       chan StateView
}

// Engine runs one quiz session as a single-goroutine state machine:
// settings -> question <-> proof, ending in complete. Every mutation of the
// session aggregate and the answer store happens on the event loop, so
// handlers never race and out-of-order events can be rejected instead of
// corrupting state.
type Engine struct {
	id     string
	cfg    *Config
	deps   *Dependencies
	grader *Grader

	ctx    context.Context
	cancel context.CancelFunc

	config    models.SessionConfig
	questions []models.Question
	limits    map[uint]models.AttemptLimit
	store     *AnswerStore
	clock     *Clock
	recorder  *Recorder

	// Mutated only by the event loop.
	phase         models.SessionPhase
	index         int
	questionStart time.Time
	timeLeft      int
	elapsedSet    bool
	submitPending bool
	grading       bool

	events chan event
	done   chan struct{}
	closed chan struct{}

	started   atomic.Bool
	startMu   sync.Mutex
	closeOnce sync.Once
}

func NewEngine(id string, cfg *Config, deps *Dependencies) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		id:     id,
		cfg:    cfg,
		deps:   deps,
		grader: NewGrader(deps.Scorer, deps.Logger),

		ctx:    ctx,
		cancel: cancel,

		store:    NewAnswerStore(),
		clock:    NewClock(),
		recorder: NewRecorder(deps.Sink, deps.Logger),

		phase:  models.PhaseSettings,
		events: make(chan event, cfg.EventBuffer),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

func (e *Engine) ID() string {
	return e.id
}

// Done is closed once the session reaches the complete state.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Start confirms the session config, loads the question set and enters the
// question phase on the first question. The config is frozen from here on.
// A failed question load leaves the session unable to begin.
func (e *Engine) Start(ctx context.Context, config models.SessionConfig) error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.started.Load() {
		return ErrConfigFrozen
	}

	questions, err := e.deps.Questions.FetchQuestions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuestionLoadFailed, err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	// Stamp the frozen config onto the session's own copy of the question
	// set: the timer flag and the effective attempt limits come from the
	// settings, not from the stored defaults.
	e.questions = make([]models.Question, len(questions))
	copy(e.questions, questions)
	e.limits = make(map[uint]models.AttemptLimit, len(questions))
	for i := range e.questions {
		q := &e.questions[i]
		if err := validateVariant(q); err != nil {
			return err
		}
		q.HasTimeLimit = config.EnableTimer
		e.limits[q.ID] = config.AttemptLimitFor(q.Type)
	}
	e.config = config

	e.enterQuestion(0)
	e.started.Store(true)
	go e.run()

	e.deps.Logger.Info("quiz session started",
		"session_id", e.id,
		"questions", len(e.questions),
		"timer_enabled", config.EnableTimer)
	return nil
}

func validateVariant(q *models.Question) error {
	switch q.Type {
	case models.MultipleChoice:
		content, err := q.MultipleChoiceContent()
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(content.Options))
		found := false
		for _, opt := range content.Options {
			if seen[opt] {
				return fmt.Errorf("question %d has duplicate option %q", q.ID, opt)
			}
			seen[opt] = true
			if opt == content.CorrectAnswer {
				found = true
			}
		}
		if len(content.Options) == 0 {
			return fmt.Errorf("question %d has no options", q.ID)
		}
		if !found {
			return fmt.Errorf("question %d correct answer is not among its options", q.ID)
		}
	case models.ShortAnswer:
		content, err := q.ShortAnswerContent()
		if err != nil {
			return err
		}
		if content.MinLength < 0 || (content.MaxLength > 0 && content.MinLength > content.MaxLength) {
			return fmt.Errorf("question %d has invalid length bounds %d..%d", q.ID, content.MinLength, content.MaxLength)
		}
	default:
		return fmt.Errorf("question %d has unsupported type %q", q.ID, q.Type)
	}
	return nil
}

// Answer records an answer update for the active question without advancing
// attempts or phase. For multiple choice this resets correctness back to
// pending until the answer is checked.
func (e *Engine) Answer(questionID uint, text string) error {
	return e.dispatch(event{kind: evAnswer, questionID: questionID, text: text, reply: make(chan error, 1)})
}

// CheckAnswer grades the stored answer of the active multiple choice
// question as one attempt. A correct answer, or running out of attempts,
// schedules the transition to the proof phase after the grace delay.
func (e *Engine) CheckAnswer(questionID uint) error {
	return e.dispatch(event{kind: evCheck, questionID: questionID, reply: make(chan error, 1)})
}

// Submit explicitly finishes the active question. Multiple choice moves to
// the proof phase immediately; short answers dispatch the scoring call and
// defer the transition until it settles.
func (e *Engine) Submit(questionID uint) error {
	return e.dispatch(event{kind: evSubmit, questionID: questionID, reply: make(chan error, 1)})
}

// Next leaves the proof phase: it advances to the following question, or
// completes the session and emits the attempt records after the last one.
func (e *Engine) Next() error {
	return e.dispatch(event{kind: evNext, reply: make(chan error, 1)})
}

// Snapshot returns a consistent view of the session, serialized through the
// event loop.
func (e *Engine) Snapshot() (StateView, error) {
	if !e.started.Load() {
		return StateView{SessionID: e.id, Phase: models.PhaseSettings}, nil
	}
	ev := event{kind: evSnapshot, view: make(chan StateView, 1)}
	select {
	case e.events <- ev:
	case <-e.closed:
		return StateView{}, ErrSessionAbandoned
	}
	select {
	case view := <-ev.view:
		return view, nil
	case <-e.closed:
		return StateView{}, ErrSessionAbandoned
	}
}

// Close abandons the session: the clock is cancelled, in-flight grading
// calls are cancelled and the event loop stops. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.clock.Cancel()
		e.cancel()
		close(e.closed)
	})
}

func (e *Engine) dispatch(ev event) error {
	if !e.started.Load() {
		return ErrSessionNotStarted
	}
	select {
	case e.events <- ev:
	case <-e.closed:
		return ErrSessionAbandoned
	}
	select {
	case err := <-ev.reply:
		return err
	case <-e.closed:
		return ErrSessionAbandoned
	}
}

// post delivers a background event; it never blocks a closed engine.
func (e *Engine) post(ev event) {
	select {
	case e.events <- ev:
	case <-e.closed:
	}
}

func (e *Engine) run() {
	for {
		select {
		case <-e.closed:
			return
		case ev := <-e.events:
			e.handle(ev)
		}
	}
}

func (e *Engine) handle(ev event) {
	var err error
	switch ev.kind {
	case evAnswer:
		err = e.handleAnswer(ev)
	case evCheck:
		err = e.handleCheck(ev)
	case evSubmit:
		err = e.handleSubmit(ev, false)
	case evAutoSubmit:
		err = e.handleSubmit(ev, true)
	case evTick:
		e.handleTick(ev)
	case evExpire:
		e.handleExpire(ev)
	case evGradeResult:
		e.handleGradeResult(ev)
	case evNext:
		err = e.handleNext()
	case evSnapshot:
		ev.view <- e.buildView()
	}
	if ev.reply != nil {
		ev.reply <- err
	}
}

func (e *Engine) activeQuestion() *models.Question {
	return &e.questions[e.index]
}

// guardActive rejects events that do not belong to the active question in
// the question phase. Stale and out-of-order events are discarded rather
// than allowed to corrupt state.
func (e *Engine) guardActive(questionID uint) error {
	if e.phase != models.PhaseQuestion {
		return ErrInvalidPhase
	}
	if questionID != e.activeQuestion().ID {
		return ErrQuestionNotActive
	}
	return nil
}

func (e *Engine) handleAnswer(ev event) error {
	if err := e.guardActive(ev.questionID); err != nil {
		return err
	}
	if e.grading {
		return ErrGradingInFlight
	}

	q := e.activeQuestion()
	if q.Type == models.MultipleChoice {
		if e.submitPending {
			return ErrSubmitPending
		}
		state := e.store.Get(q.ID)
		if state != nil {
			if state.IsCorrect != nil && *state.IsCorrect {
				return ErrAlreadyCorrect
			}
			if e.limits[q.ID].Exhausted(state.AttemptsUsed) {
				return ErrAttemptsExhausted
			}
		}
	}

	e.store.SetAnswer(q.ID, q.Type, ev.text)
	return nil
}

func (e *Engine) handleCheck(ev event) error {
	if err := e.guardActive(ev.questionID); err != nil {
		return err
	}
	q := e.activeQuestion()
	if q.Type != models.MultipleChoice {
		return fmt.Errorf("question %d: only multiple choice answers are checked per attempt", q.ID)
	}
	if e.submitPending {
		return ErrSubmitPending
	}

	state := e.store.Get(q.ID)
	if state == nil || !state.HasAnswer() {
		return fmt.Errorf("question %d has no answer to grade", q.ID)
	}
	if state.IsCorrect != nil && *state.IsCorrect {
		return ErrAlreadyCorrect
	}
	limit := e.limits[q.ID]
	if limit.Exhausted(state.AttemptsUsed) {
		return ErrAttemptsExhausted
	}

	correct, err := e.grader.GradeMultipleChoice(q, state.CurrentAnswer)
	if err != nil {
		return err
	}
	state.AttemptsUsed++
	state.MarkFirstAttempt(correct)
	state.IsCorrect = &correct

	e.deps.Logger.Info("multiple choice attempt graded",
		"session_id", e.id,
		"question_id", q.ID,
		"attempt", state.AttemptsUsed,
		"correct", correct)

	// Correct, or out of attempts on a limited question: schedule the proof
	// transition after the grace delay and accept no further attempts in
	// the meantime.
	if correct || limit.Exhausted(state.AttemptsUsed) {
		e.submitPending = true
		questionID := q.ID
		time.AfterFunc(e.cfg.AutoAdvanceDelay, func() {
			e.post(event{kind: evAutoSubmit, questionID: questionID})
		})
	}
	return nil
}

func (e *Engine) handleSubmit(ev event, auto bool) error {
	if err := e.guardActive(ev.questionID); err != nil {
		if auto {
			// The grace-period timer fired after the question already
			// moved on (explicit submit or expiry won the race).
			return nil
		}
		return err
	}
	if e.grading {
		if auto {
			return nil
		}
		return ErrGradingInFlight
	}
	if auto && !e.submitPending {
		return nil
	}

	q := e.activeQuestion()
	state := e.store.GetOrCreate(q.ID)
	e.stopQuestionClock(q)

	switch q.Type {
	case models.MultipleChoice:
		// An answer left pending (updated but never checked) gets a final
		// evaluation. It is a graded submission like any check: it counts
		// as an attempt and settles the first-guess outcome.
		if state.HasAnswer() && state.IsCorrect == nil {
			correct, err := e.grader.GradeMultipleChoice(q, state.CurrentAnswer)
			if err != nil {
				return err
			}
			state.AttemptsUsed++
			state.MarkFirstAttempt(correct)
			state.IsCorrect = &correct
		}
		state.Submitted = true
		e.enterProof()
		return nil

	case models.ShortAnswer:
		if !auto {
			state.AttemptsUsed++
		}
		if !state.HasAnswer() {
			// Nothing to score; the session proceeds rather than blocking.
			e.deps.Logger.Info("short answer submitted without content, skipping scorer",
				"session_id", e.id,
				"question_id", q.ID)
			state.Submitted = true
			e.enterProof()
			return nil
		}
		e.beginFreeTextGrading(q, state.CurrentAnswer)
		return nil
	}
	return nil
}

// beginFreeTextGrading dispatches the external scoring call. The proof
// transition is deferred until the result event arrives, success or
// failure, so the session never stalls in an ungraded phase.
func (e *Engine) beginFreeTextGrading(q *models.Question, answer string) {
	e.grading = true
	question := *q
	go func() {
		score, err := e.grader.GradeFreeText(e.ctx, &question, answer)
		e.post(event{kind: evGradeResult, questionID: question.ID, score: score, scoreErr: err})
	}()
}

func (e *Engine) handleGradeResult(ev event) {
	if e.phase != models.PhaseQuestion || !e.grading || ev.questionID != e.activeQuestion().ID {
		e.deps.Logger.Warn("dropping stale grading result",
			"session_id", e.id,
			"question_id", ev.questionID)
		return
	}
	e.grading = false

	state := e.store.GetOrCreate(ev.questionID)
	switch {
	case ev.scoreErr == nil:
		score := ev.score
		state.Score = &score
		e.deps.Logger.Info("short answer scored",
			"session_id", e.id,
			"question_id", ev.questionID,
			"score", score)
	case errors.Is(ev.scoreErr, ErrMissingScoreInput):
		e.deps.Logger.Info("scorer input rejected, proceeding without score",
			"session_id", e.id,
			"question_id", ev.questionID)
	default:
		e.deps.Logger.Error("free text grading failed, proceeding without score",
			"session_id", e.id,
			"question_id", ev.questionID,
			"error", ev.scoreErr)
	}

	state.Submitted = true
	e.enterProof()
}

func (e *Engine) handleTick(ev event) {
	if e.phase != models.PhaseQuestion || ev.questionID != e.activeQuestion().ID {
		return
	}
	e.timeLeft = ev.remaining
}

func (e *Engine) handleExpire(ev event) {
	if e.phase != models.PhaseQuestion || ev.questionID != e.activeQuestion().ID || e.grading {
		e.deps.Logger.Debug("dropping stale expiry",
			"session_id", e.id,
			"question_id", ev.questionID)
		return
	}

	q := e.activeQuestion()
	state := e.store.Get(q.ID)
	if state == nil || state.CurrentAnswer == "" {
		// Force the sentinel in before grading so the record shows the
		// question expired unanswered, not that the answer went missing.
		state = e.store.SetAnswer(q.ID, q.Type, models.AnswerNone)
	}
	e.timeLeft = 0
	if !e.elapsedSet {
		state.ElapsedSeconds = e.config.TimeLimitFor(q.Type)
		e.elapsedSet = true
	}

	e.deps.Logger.Info("question timer expired",
		"session_id", e.id,
		"question_id", q.ID,
		"answered", state.HasAnswer())

	switch q.Type {
	case models.MultipleChoice:
		if state.IsCorrect == nil {
			correct, err := e.grader.GradeMultipleChoice(q, state.CurrentAnswer)
			if err == nil {
				if state.HasAnswer() {
					state.AttemptsUsed++
				}
				state.MarkFirstAttempt(correct)
				state.IsCorrect = &correct
			}
		}
		state.Submitted = true
		e.enterProof()
	case models.ShortAnswer:
		if !state.HasAnswer() {
			state.Submitted = true
			e.enterProof()
			return
		}
		e.beginFreeTextGrading(q, state.CurrentAnswer)
	}
}

func (e *Engine) handleNext() error {
	if e.phase != models.PhaseProof {
		return ErrInvalidPhase
	}

	if e.index == len(e.questions)-1 {
		e.complete()
		return nil
	}
	e.enterQuestion(e.index + 1)
	return nil
}

func (e *Engine) enterQuestion(index int) {
	e.index = index
	e.phase = models.PhaseQuestion
	e.questionStart = time.Now()
	e.elapsedSet = false
	e.submitPending = false
	e.timeLeft = 0

	q := e.activeQuestion()
	if e.config.EnableTimer {
		limit := e.config.TimeLimitFor(q.Type)
		e.timeLeft = limit
		e.clock.Start(q.ID, time.Duration(limit)*time.Second, e.onTick, e.onExpire)
	}
}

func (e *Engine) enterProof() {
	e.phase = models.PhaseProof
	e.submitPending = false
}

// stopQuestionClock cancels the countdown and settles the wall-clock
// elapsed seconds for the active question, at most once per question.
func (e *Engine) stopQuestionClock(q *models.Question) {
	e.clock.Cancel()
	if e.elapsedSet {
		return
	}
	elapsed := int(time.Since(e.questionStart).Round(time.Second) / time.Second)
	if e.config.EnableTimer {
		if limit := e.config.TimeLimitFor(q.Type); elapsed > limit {
			elapsed = limit
		}
	}
	state := e.store.GetOrCreate(q.ID)
	state.ElapsedSeconds = elapsed
	e.elapsedSet = true
}

func (e *Engine) complete() {
	e.phase = models.PhaseComplete
	e.clock.Cancel()

	records := e.recorder.BuildRecords(e.config, e.questions, e.store.Snapshot())
	go func() {
		if failures := e.recorder.Flush(e.ctx, records); len(failures) > 0 {
			e.deps.Logger.Warn("session completed with unsaved attempt records",
				"session_id", e.id,
				"failed", len(failures),
				"total", len(records))
		}
	}()

	e.deps.Logger.Info("quiz session completed",
		"session_id", e.id,
		"questions", len(e.questions))
	close(e.done)
}

func (e *Engine) onTick(questionID uint, remaining int) {
	// Ticks are advisory; drop them rather than block the loop.
	select {
	case e.events <- event{kind: evTick, questionID: questionID, remaining: remaining}:
	default:
	}
}

func (e *Engine) onExpire(questionID uint) {
	e.post(event{kind: evExpire, questionID: questionID})
}
