// Package session implements the single-user exam session state machine:
// instructions, consent, the timed test and the final report.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
)

type Stage string

const (
	StageInstructions Stage = "instructions"
	StageConsent      Stage = "consent"
	StageTest         Stage = "test"
	StageReport       Stage = "report"
)

var (
	ErrInvalidTransition  = errors.New("invalid stage transition")
	ErrConsentRequired    = errors.New("consent must be accepted before starting")
	ErrNoQuestions        = errors.New("exam has no questions")
	ErrTimerStarted       = errors.New("test already started")
	ErrNotInTest          = errors.New("session is not in test stage")
	ErrAlreadySubmitted   = errors.New("session already submitted")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrUnknownOption      = errors.New("option does not belong to current question")
	ErrOutOfRange         = errors.New("question index out of range")
)

// Submission is the frozen state handed to a Submitter.
type Submission struct {
	ExamID           uint             `json:"exam_id"`
	ExamType         models.ExamKind  `json:"exam_type"`
	Answers          models.AnswerMap `json:"answers"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
}

// Receipt is the score breakdown returned by a successful submission.
type Receipt struct {
	AttemptID      uint    `json:"attempt_id"`
	Score          float64 `json:"score"`
	TotalMarks     float64 `json:"total_marks"`
	Percentage     float64 `json:"percentage"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Unattempted    int     `json:"unattempted"`
	TotalQuestions int     `json:"total_questions"`
}

// Submitter grades and persists a submission.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Receipt, error)
}

type SubmitterFunc func(ctx context.Context, sub Submission) (*Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	return f(ctx, sub)
}

type Option func(*Session)

// WithTickInterval sets the countdown step. Zero disables the background
// ticker so the caller drives Tick directly.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithErrorHandler registers a callback for submission failures, typically a toast.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// Session holds one student's in-memory exam state. Methods are safe to call
// from the UI and from the countdown goroutine.
type Session struct {
	mu sync.Mutex

	exam      models.SessionExam
	questions []models.SessionQuestion
	submitter Submitter

	stage     Stage
	consent   bool
	current   int
	answers   models.AnswerMap
	statuses  map[uint]models.QuestionStatus
	remaining int

	submitting bool
	receipt    *Receipt
	lastErr    error

	interval time.Duration
	stop     chan struct{}
	onError  func(error)
}

func New(payload models.SessionPayload, submitter Submitter, opts ...Option) *Session {
	s := &Session{
		exam:      payload.Exam,
		questions: payload.Questions,
		submitter: submitter,
		stage:     StageInstructions,
		answers:   make(models.AnswerMap),
		statuses:  make(map[uint]models.QuestionStatus, len(payload.Questions)),
		remaining: payload.Exam.DurationMinutes * 60,
		interval:  time.Second,
	}
	for _, q := range payload.Questions {
		s.statuses[q.ID] = models.StatusNotVisited
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===== STAGES =====

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Next moves from instructions to consent.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageInstructions {
		return ErrInvalidTransition
	}
	s.stage = StageConsent
	return nil
}

// Back moves from consent to instructions. Once the test has started the
// countdown cannot be undone.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.stage {
	case StageConsent:
		s.stage = StageInstructions
		return nil
	case StageTest:
		return ErrTimerStarted
	case StageReport:
		return ErrAlreadySubmitted
	default:
		return ErrInvalidTransition
	}
}

func (s *Session) Accept(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consent = accepted
}

// Empty reports whether the session has no questions to show.
func (s *Session) Empty() bool {
	return len(s.questions) == 0
}

// BeginTest enters the test stage and starts the countdown.
func (s *Session) BeginTest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageConsent {
		return ErrInvalidTransition
	}
	if !s.consent {
		return ErrConsentRequired
	}
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	s.stage = StageTest
	s.current = 0
	if s.interval > 0 {
		s.stop = make(chan struct{})
		go s.run(s.interval, s.stop)
	}
	return nil
}

// Stop cancels the countdown. It is called on stage exit and is safe to repeat.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) run(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// Tick advances the countdown by one second and auto-submits when it reaches zero.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.stage != StageTest || s.remaining <= 0 {
		s.mu.Unlock()
		return
	}
	s.remaining--
	expired := s.remaining == 0
	s.mu.Unlock()

	if !expired {
		return
	}
	// a manual submit already in flight covers expiry
	_, _ = s.Submit(context.Background())
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// ===== QUESTIONS =====

// Current returns the index and question being viewed.
func (s *Session) Current() (int, models.SessionQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return 0, models.SessionQuestion{}, false
	}
	return s.current, s.questions[s.current], true
}

// Select records an option for the current question without committing its status.
func (s *Session) Select(optionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTestLocked(); err != nil {
		return err
	}
	q := s.questions[s.current]
	for _, o := range q.Options {
		if o.ID == optionID {
			s.answers[q.ID] = optionID
			return nil
		}
	}
	return ErrUnknownOption
}

func (s *Session) SaveAndNext() error {
	return s.commitAndAdvance(models.StatusAnswered, models.StatusNotAnswered)
}

func (s *Session) MarkForReviewAndNext() error {
	return s.commitAndAdvance(models.StatusAnsAndReview, models.StatusReview)
}

func (s *Session) commitAndAdvance(ifAnswered, ifBlank models.QuestionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTestLocked(); err != nil {
		return err
	}
	qID := s.questions[s.current].ID
	if _, ok := s.answers[qID]; ok {
		s.statuses[qID] = ifAnswered
	} else {
		s.statuses[qID] = ifBlank
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return nil
}

// ClearResponse drops the current answer and marks the question not answered.
func (s *Session) ClearResponse() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTestLocked(); err != nil {
		return err
	}
	qID := s.questions[s.current].ID
	delete(s.answers, qID)
	s.statuses[qID] = models.StatusNotAnswered
	return nil
}

// GoTo jumps to a question from the palette. Statuses are left untouched.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTestLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.questions) {
		return ErrOutOfRange
	}
	s.current = index
	return nil
}

func (s *Session) requireTestLocked() error {
	if s.stage == StageReport {
		return ErrAlreadySubmitted
	}
	if s.stage != StageTest {
		return ErrNotInTest
	}
	return nil
}

func (s *Session) Status(questionID uint) models.QuestionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[questionID]
}

func (s *Session) Answers() models.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Summary counts for the palette legend.
type Summary struct {
	Attempted   int                           `json:"attempted"`
	Unattempted int                           `json:"unattempted"`
	ByStatus    map[models.QuestionStatus]int `json:"by_status"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{
		Attempted: len(s.answers),
		ByStatus:  make(map[models.QuestionStatus]int),
	}
	sum.Unattempted = len(s.questions) - sum.Attempted
	for _, st := range s.statuses {
		sum.ByStatus[st]++
	}
	return sum
}

// ===== SUBMISSION =====

// Submit freezes the answers and hands them to the submitter. On failure the
// session stays in the test stage and can be retried.
func (s *Session) Submit(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	if err := s.requireTestLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.submitting = true
	sub := Submission{
		ExamID:           s.exam.ID,
		ExamType:         s.exam.Kind,
		Answers:          s.answers.Clone(),
		TimeTakenSeconds: s.exam.DurationMinutes*60 - s.remaining,
	}
	s.mu.Unlock()

	receipt, err := s.submitter.Submit(ctx, sub)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.lastErr = err
		onError := s.onError
		s.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return nil, err
	}
	s.lastErr = nil
	s.receipt = receipt
	s.stage = StageReport
	s.stopLocked()
	s.mu.Unlock()
	return receipt, nil
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) Receipt() *Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
