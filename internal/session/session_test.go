package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(minutes int) models.SessionPayload {
	return models.SessionPayload{
		Exam: models.SessionExam{ID: 9, Kind: models.ExamKindMock, Title: "Mock 1", DurationMinutes: minutes, TotalMarks: 12, TotalQuestions: 3},
		Questions: []models.SessionQuestion{
			{ID: 1, Text: "q1", Options: []models.SessionOption{{ID: 11}, {ID: 12}}},
			{ID: 2, Text: "q2", Options: []models.SessionOption{{ID: 21}, {ID: 22}}},
			{ID: 3, Text: "q3", Options: []models.SessionOption{{ID: 31}, {ID: 32}}},
		},
	}
}

type recordingSubmitter struct {
	calls atomic.Int32
	last  Submission
	mu    sync.Mutex
	err   error
}

func (r *recordingSubmitter) Submit(_ context.Context, sub Submission) (*Receipt, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = sub
	if r.err != nil {
		return nil, r.err
	}
	return &Receipt{AttemptID: 77, Score: 4}, nil
}

func startedSession(t *testing.T, sub Submitter, minutes int) *Session {
	t.Helper()
	s := New(testPayload(minutes), sub, WithTickInterval(0))
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())
	return s
}

func TestStages_LinearFlow(t *testing.T) {
	s := New(testPayload(1), &recordingSubmitter{}, WithTickInterval(0))
	assert.Equal(t, StageInstructions, s.Stage())

	require.NoError(t, s.Next())
	assert.Equal(t, StageConsent, s.Stage())

	require.NoError(t, s.Back())
	assert.Equal(t, StageInstructions, s.Stage())

	require.NoError(t, s.Next())
	assert.ErrorIs(t, s.BeginTest(), ErrConsentRequired)

	s.Accept(true)
	require.NoError(t, s.BeginTest())
	assert.Equal(t, StageTest, s.Stage())
	assert.ErrorIs(t, s.Back(), ErrTimerStarted)
	assert.Equal(t, 60, s.Remaining())
}

func TestBeginTest_NoQuestions(t *testing.T) {
	payload := testPayload(1)
	payload.Questions = nil
	s := New(payload, &recordingSubmitter{}, WithTickInterval(0))
	require.NoError(t, s.Next())
	s.Accept(true)

	assert.True(t, s.Empty())
	assert.ErrorIs(t, s.BeginTest(), ErrNoQuestions)
	_, _, ok := s.Current()
	assert.False(t, ok)
}

func TestSelect_DoesNotCommitStatus(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.Select(11))

	assert.Equal(t, models.StatusNotVisited, s.Status(1))
	assert.Equal(t, models.AnswerMap{1: 11}, s.Answers())
}

func TestSelect_RejectsForeignOption(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	assert.ErrorIs(t, s.Select(21), ErrUnknownOption)
	assert.Empty(t, s.Answers())
}

func TestSaveAndNext(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.Select(12))
	require.NoError(t, s.SaveAndNext())

	assert.Equal(t, models.StatusAnswered, s.Status(1))
	idx, q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, uint(2), q.ID)
}

func TestClearResponseThenSave(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.Select(11))
	require.NoError(t, s.ClearResponse())
	assert.Equal(t, models.StatusNotAnswered, s.Status(1))

	require.NoError(t, s.SaveAndNext())
	assert.Equal(t, models.StatusNotAnswered, s.Status(1))
	assert.Empty(t, s.Answers())
}

func TestMarkForReview(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.MarkForReviewAndNext())
	assert.Equal(t, models.StatusReview, s.Status(1))

	require.NoError(t, s.Select(22))
	require.NoError(t, s.MarkForReviewAndNext())
	assert.Equal(t, models.StatusAnsAndReview, s.Status(2))
}

func TestNavigationIsBounded(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.GoTo(2))
	require.NoError(t, s.SaveAndNext())

	idx, _, _ := s.Current()
	assert.Equal(t, 2, idx)
	assert.ErrorIs(t, s.GoTo(3), ErrOutOfRange)
	assert.ErrorIs(t, s.GoTo(-1), ErrOutOfRange)
}

func TestGoTo_LeavesStatusesAlone(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)

	require.NoError(t, s.GoTo(1))
	require.NoError(t, s.GoTo(0))

	for _, id := range []uint{1, 2, 3} {
		assert.Equal(t, models.StatusNotVisited, s.Status(id))
	}
}

func TestSummary(t *testing.T) {
	s := startedSession(t, &recordingSubmitter{}, 1)
	require.NoError(t, s.Select(11))
	require.NoError(t, s.SaveAndNext())
	require.NoError(t, s.MarkForReviewAndNext())

	sum := s.Summary()
	assert.Equal(t, 1, sum.Attempted)
	assert.Equal(t, 2, sum.Unattempted)
	assert.Equal(t, 1, sum.ByStatus[models.StatusAnswered])
	assert.Equal(t, 1, sum.ByStatus[models.StatusReview])
	assert.Equal(t, 1, sum.ByStatus[models.StatusNotVisited])
}

func TestSubmit_Success(t *testing.T) {
	sub := &recordingSubmitter{}
	s := startedSession(t, sub, 1)
	require.NoError(t, s.Select(11))
	for i := 0; i < 15; i++ {
		s.Tick()
	}

	receipt, err := s.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint(77), receipt.AttemptID)
	assert.Equal(t, StageReport, s.Stage())
	assert.Equal(t, 15, sub.last.TimeTakenSeconds)
	assert.Equal(t, models.ExamKindMock, sub.last.ExamType)
	assert.Equal(t, uint(9), sub.last.ExamID)
	assert.Equal(t, models.AnswerMap{1: 11}, sub.last.Answers)
	assert.ErrorIs(t, s.Select(12), ErrAlreadySubmitted)
}

func TestSubmit_FailureStaysInTest(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("network down")}
	var toasts []error
	s := New(testPayload(1), sub, WithTickInterval(0), WithErrorHandler(func(err error) { toasts = append(toasts, err) }))
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())
	require.NoError(t, s.Select(12))

	_, err := s.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, StageTest, s.Stage())
	assert.False(t, s.Submitting())
	assert.Equal(t, models.AnswerMap{1: 12}, s.Answers())
	assert.Len(t, toasts, 1)
	assert.Error(t, s.LastError())

	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageReport, s.Stage())
	assert.NoError(t, s.LastError())
}

func TestTimerExpiry_AutoSubmitsOnce(t *testing.T) {
	sub := &recordingSubmitter{}
	s := startedSession(t, sub, 1)

	for i := 0; i < 100; i++ {
		s.Tick()
	}

	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, StageReport, s.Stage())
	assert.Equal(t, 0, s.Remaining())
	assert.Equal(t, 60, sub.last.TimeTakenSeconds)
}

func TestManualAndTimerSubmitRace(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	sub := SubmitterFunc(func(ctx context.Context, _ Submission) (*Receipt, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return &Receipt{AttemptID: 1}, nil
	})

	s := New(testPayload(1), sub, WithTickInterval(0))
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())
	for i := 0; i < 59; i++ {
		s.Tick()
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-entered
	assert.True(t, s.Submitting())

	s.Tick() // expiry while manual submit is in flight

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StageReport, s.Stage())

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(testPayload(1), &recordingSubmitter{})
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())

	s.Stop()
	s.Stop()
	assert.Equal(t, StageTest, s.Stage())
}

func TestActionsBeforeTest(t *testing.T) {
	s := New(testPayload(1), &recordingSubmitter{}, WithTickInterval(0))

	assert.ErrorIs(t, s.Select(11), ErrNotInTest)
	assert.ErrorIs(t, s.SaveAndNext(), ErrNotInTest)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotInTest)
	s.Tick()
	assert.Equal(t, 60, s.Remaining())
}

func TestCountdown_BackgroundTickerAutoSubmitsOnce(t *testing.T) {
	sub := &recordingSubmitter{}
	s := New(testPayload(1), sub, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Stage() == StageReport }, 5*time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, 0, s.Remaining())
	sub.mu.Lock()
	assert.Equal(t, 60, sub.last.TimeTakenSeconds)
	assert.Equal(t, uint(9), sub.last.ExamID)
	sub.mu.Unlock()
}

func TestCountdown_StopHaltsTicker(t *testing.T) {
	s := New(testPayload(10), &recordingSubmitter{}, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Next())
	s.Accept(true)
	require.NoError(t, s.BeginTest())

	assert.Eventually(t, func() bool { return s.Remaining() < 600 }, 5*time.Second, time.Millisecond)
	s.Stop()
	s.Stop()
	left := s.Remaining()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, left, s.Remaining())
	assert.Equal(t, StageTest, s.Stage())
}
