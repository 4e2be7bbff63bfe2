package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportAttempts(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New())
	ctx := context.Background()
	ref := models.ExamRef{Kind: models.ExamKindPractice, ID: 4}

	repo.exams.On("GetByRef", ctx, mock.Anything, ref).Return(practiceExam(), nil)
	repo.attempts.On("List", ctx, mock.Anything, mock.MatchedBy(func(f repositories.AttemptFilters) bool {
		return f.UserID == "" && *f.ExamKind == models.ExamKindPractice && *f.ExamID == 4
	})).Return([]*models.Attempt{
		{ID: 1, UserID: "u1", Score: 4, TotalMarks: 8, Percentage: 50, Correct: 1, Unattempted: 1, TimeTakenSeconds: 90, CreatedAt: time.Now()},
		{ID: 2, UserID: "u2", Score: -2, TotalMarks: 8, Percentage: -25, Incorrect: 2, TimeTakenSeconds: 600, CreatedAt: time.Now()},
	}, int64(2), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportAttempts(ctx, ref, models.DateRange{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Attempt ID", rows[0][0])
	assert.Equal(t, "u1", rows[1][1])
	assert.Equal(t, "4", rows[1][2])
	assert.Equal(t, "u2", rows[2][1])
	assert.Equal(t, "-2", rows[2][2])
}

func TestExportService_ExportAttempts_UnknownExam(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New())
	ctx := context.Background()

	repo.exams.On("GetByRef", ctx, mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound)

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.ExportAttempts(ctx, models.ExamRef{Kind: models.ExamKindMock, ID: 1}, models.DateRange{}, &buf), ErrExamNotFound)
	assert.ErrorIs(t, svc.ExportAttempts(ctx, models.ExamRef{Kind: "quiz", ID: 1}, models.DateRange{}, &buf), ErrInvalidExamKind)
	assert.Zero(t, buf.Len())
}

func TestExportService_ExportAttempts_DateWindow(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New())
	ctx := context.Background()
	ref := models.ExamRef{Kind: models.ExamKindMock, ID: 9}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	repo.exams.On("GetByRef", ctx, mock.Anything, ref).Return(practiceExam(), nil)
	repo.attempts.On("List", ctx, mock.Anything, mock.MatchedBy(func(f repositories.AttemptFilters) bool {
		return f.DateFrom != nil && f.DateFrom.Equal(from) && f.DateTo != nil && f.DateTo.Equal(to)
	})).Return([]*models.Attempt{}, int64(0), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportAttempts(ctx, ref, models.DateRange{From: &from, To: &to}, &buf))
	repo.attempts.AssertExpectations(t)

	err := svc.ExportAttempts(ctx, ref, models.DateRange{From: &to, To: &from}, &buf)
	assert.True(t, IsValidation(err))
	repo.attempts.AssertNumberOfCalls(t, "List", 1)
}
