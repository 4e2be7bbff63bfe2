package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/events"
	"github.com/SAP-F-2025/examprep-service/internal/events/eventstest"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var student = models.Principal{UserID: "student-1", Role: models.RoleStudent}

func practiceExam() *models.Exam {
	return &models.Exam{
		ID:              4,
		Kind:            models.ExamKindPractice,
		Title:           "Algebra practice",
		DurationMinutes: 10,
		TotalMarks:      8,
		Marking:         models.MarkingScheme{Correct: 4, Incorrect: -1},
		Published:       true,
	}
}

func twoQuestions() []models.Question {
	return []models.Question{
		{ID: 10, Options: []models.Option{{ID: 100, IsCorrect: true}, {ID: 101}}},
		{ID: 11, Options: []models.Option{{ID: 110}, {ID: 111, IsCorrect: true}}},
	}
}

func newAttemptServiceForTest() (*attemptService, *MockRepository, *eventstest.Recorder) {
	repo := newMockRepository()
	publisher := eventstest.NewRecorder()
	svc := NewAttemptService(repo, publisher, testLogger(), validator.New()).(*attemptService)
	return svc, repo, publisher
}

func TestAttemptService_Submit(t *testing.T) {
	svc, repo, publisher := newAttemptServiceForTest()
	ctx := context.Background()
	ref := models.ExamRef{Kind: models.ExamKindPractice, ID: 4}

	repo.exams.On("GetByRef", ctx, mock.Anything, ref).Return(practiceExam(), nil)
	repo.questions.On("ListForExam", ctx, mock.Anything, ref).Return(twoQuestions(), nil)
	repo.attempts.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*models.Attempt).ID = 55
		}).
		Return(nil)

	resp, err := svc.Submit(ctx, &SubmitAttemptRequest{
		ExamID:           4,
		ExamType:         models.ExamKindPractice,
		Answers:          models.AnswerMap{10: 100},
		TimeTakenSeconds: 120,
	}, student)

	require.NoError(t, err)
	assert.Equal(t, uint(55), resp.AttemptID)
	assert.Equal(t, 4.0, resp.Score)
	assert.Equal(t, 50.0, resp.Percentage)
	assert.Equal(t, 1, resp.Correct)
	assert.Equal(t, 0, resp.Incorrect)
	assert.Equal(t, 1, resp.Unattempted)
	assert.Equal(t, 2, resp.TotalQuestions)

	saved := repo.attempts.Calls[0].Arguments.Get(2).(*models.Attempt)
	assert.Equal(t, "student-1", saved.UserID)
	assert.Equal(t, ref, saved.Exam)
	assert.Equal(t, models.AnswerMap{10: 100}, saved.Answers)
	assert.Equal(t, 120, saved.TimeTakenSeconds)

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSubmitted, published[0].Type)
}

func TestAttemptService_Submit_NegativeMarking(t *testing.T) {
	svc, repo, _ := newAttemptServiceForTest()
	ctx := context.Background()
	ref := models.ExamRef{Kind: models.ExamKindPractice, ID: 4}

	repo.exams.On("GetByRef", ctx, mock.Anything, ref).Return(practiceExam(), nil)
	repo.questions.On("ListForExam", ctx, mock.Anything, ref).Return(twoQuestions(), nil)
	repo.attempts.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Submit(ctx, &SubmitAttemptRequest{
		ExamID:   4,
		ExamType: models.ExamKindPractice,
		Answers:  models.AnswerMap{10: 101, 11: 110},
	}, student)

	require.NoError(t, err)
	assert.Equal(t, -2.0, resp.Score)
	assert.Equal(t, 2, resp.Incorrect)
	assert.Equal(t, 0, resp.Unattempted)
}

func TestAttemptService_Submit_ClampsTimeTaken(t *testing.T) {
	for _, tc := range []struct {
		name      string
		submitted int
		want      int
	}{
		{"negative", -30, 0},
		{"over the limit", 10_000, 600},
		{"within", 599, 599},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newAttemptServiceForTest()
			ctx := context.Background()

			repo.exams.On("GetByRef", ctx, mock.Anything, mock.Anything).Return(practiceExam(), nil)
			repo.questions.On("ListForExam", ctx, mock.Anything, mock.Anything).Return(twoQuestions(), nil)
			repo.attempts.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

			_, err := svc.Submit(ctx, &SubmitAttemptRequest{
				ExamID: 4, ExamType: models.ExamKindPractice, TimeTakenSeconds: tc.submitted,
			}, student)

			require.NoError(t, err)
			saved := repo.attempts.Calls[0].Arguments.Get(2).(*models.Attempt)
			assert.Equal(t, tc.want, saved.TimeTakenSeconds)
		})
	}
}

func TestAttemptService_Submit_PersistenceFailure(t *testing.T) {
	svc, repo, publisher := newAttemptServiceForTest()
	ctx := context.Background()

	repo.exams.On("GetByRef", ctx, mock.Anything, mock.Anything).Return(practiceExam(), nil)
	repo.questions.On("ListForExam", ctx, mock.Anything, mock.Anything).Return(twoQuestions(), nil)
	repo.attempts.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	resp, err := svc.Submit(ctx, &SubmitAttemptRequest{ExamID: 4, ExamType: models.ExamKindPractice}, student)

	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "failed to save attempt")
	assert.Empty(t, publisher.Published())
}

func TestAttemptService_Submit_UnpublishedExam(t *testing.T) {
	svc, repo, _ := newAttemptServiceForTest()
	ctx := context.Background()

	exam := practiceExam()
	exam.Published = false
	repo.exams.On("GetByRef", ctx, mock.Anything, mock.Anything).Return(exam, nil)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{ExamID: 4, ExamType: models.ExamKindPractice}, student)

	assert.ErrorIs(t, err, ErrExamNotFound)
	repo.attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Submit_Validation(t *testing.T) {
	svc, _, _ := newAttemptServiceForTest()

	_, err := svc.Submit(context.Background(), &SubmitAttemptRequest{ExamID: 4, ExamType: "quiz"}, student)
	assert.True(t, IsValidation(err))

	_, err = svc.Submit(context.Background(), &SubmitAttemptRequest{ExamID: 4, ExamType: models.ExamKindMock}, models.Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAttemptService_GetByID_Ownership(t *testing.T) {
	svc, repo, _ := newAttemptServiceForTest()
	ctx := context.Background()

	attempt := &models.Attempt{ID: 9, UserID: "someone-else"}
	repo.attempts.On("GetByID", ctx, mock.Anything, uint(9)).Return(attempt, nil)
	repo.attempts.On("GetByID", ctx, mock.Anything, uint(10)).Return(nil, repositories.ErrNotFound)

	_, err := svc.GetByID(ctx, 9, student)
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.True(t, IsForbidden(err))

	got, err := svc.GetByID(ctx, 9, models.Principal{UserID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.ID)

	_, err = svc.GetByID(ctx, 10, student)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestAttemptService_List(t *testing.T) {
	svc, repo, _ := newAttemptServiceForTest()
	ctx := context.Background()

	kind := models.ExamKindMock
	examID := uint(3)
	repo.attempts.On("List", ctx, mock.Anything, repositories.AttemptFilters{
		UserID:   "student-1",
		ExamKind: &kind,
		ExamID:   &examID,
		Limit:    defaultAttemptPageSize,
	}).Return([]*models.Attempt{{ID: 1}}, int64(1), nil)

	resp, err := svc.List(ctx, &AttemptListRequest{ExamType: &kind, ExamID: &examID}, student)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, defaultAttemptPageSize, resp.Limit)

	_, err = svc.List(ctx, &AttemptListRequest{ExamID: &examID}, student)
	assert.True(t, IsValidation(err))
}

func TestAttemptService_List_DateWindow(t *testing.T) {
	svc, repo, _ := newAttemptServiceForTest()
	ctx := context.Background()
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	repo.attempts.On("List", ctx, mock.Anything, mock.MatchedBy(func(f repositories.AttemptFilters) bool {
		return f.UserID == "student-1" && f.DateFrom.Equal(from) && f.DateTo.Equal(to)
	})).Return([]*models.Attempt{}, int64(0), nil)

	_, err := svc.List(ctx, &AttemptListRequest{DateRange: models.DateRange{From: &from, To: &to}}, student)
	require.NoError(t, err)

	_, err = svc.List(ctx, &AttemptListRequest{DateRange: models.DateRange{From: &to, To: &from}}, student)
	var fieldErrs ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, []string{"date_to"}, fieldErrs.Fields())
	repo.attempts.AssertNumberOfCalls(t, "List", 1)
}
