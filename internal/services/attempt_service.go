package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/examprep-service/internal/events"
	"github.com/SAP-F-2025/examprep-service/internal/grading"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
)

const defaultAttemptPageSize = 20

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttemptService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

// Submit grades the answers against the stored answer key and records one
// attempt. A persistence failure fails the whole submission.
func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, principal models.Principal) (*SubmitAttemptResponse, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	s.logger.Info("Submitting attempt",
		"exam_id", req.ExamID,
		"exam_type", req.ExamType,
		"user_id", principal.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ref := models.ExamRef{Kind: req.ExamType, ID: req.ExamID}
	exam, err := loadExam(ctx, s.repo, ref, principal)
	if err != nil {
		return nil, err
	}

	// Always read the key from the database, never from the payload cache.
	questions, err := s.repo.Question().ListForExam(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer key: %w", err)
	}

	answers := req.Answers
	if answers == nil {
		answers = models.AnswerMap{}
	}
	result := grading.Grade(questions, answers, exam.Marking, exam.TotalMarks)

	attempt := &models.Attempt{
		UserID:           principal.UserID,
		Exam:             ref,
		Answers:          answers,
		Score:            result.Score,
		TotalMarks:       result.TotalMarks,
		Percentage:       result.Percentage,
		Correct:          result.Correct,
		Incorrect:        result.Incorrect,
		Unattempted:      result.Unattempted,
		TimeTakenSeconds: clampTimeTaken(req.TimeTakenSeconds, exam.DurationSeconds()),
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		s.logger.Error("Failed to persist attempt",
			"exam", ref.String(),
			"user_id", principal.UserID,
			"error", err)
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewAttemptSubmittedEvent(attempt)); err != nil {
		s.logger.Warn("Failed to publish attempt submitted event",
			"attempt_id", attempt.ID,
			"error", err)
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"exam", ref.String(),
		"score", result.Score,
		"correct", result.Correct,
		"incorrect", result.Incorrect,
		"unattempted", result.Unattempted)

	return &SubmitAttemptResponse{
		AttemptID:      attempt.ID,
		Score:          result.Score,
		TotalMarks:     result.TotalMarks,
		Percentage:     result.Percentage,
		Correct:        result.Correct,
		Incorrect:      result.Incorrect,
		Unattempted:    result.Unattempted,
		TotalQuestions: result.TotalQuestions,
	}, nil
}

func (s *attemptService) GetByID(ctx context.Context, id uint, principal models.Principal) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, NewPermissionError(principal.UserID, id, "attempt", "view", "not the owner")
	}
	return attempt, nil
}

// List returns the caller's own attempts, newest first.
func (s *attemptService) List(ctx context.Context, req *AttemptListRequest, principal models.Principal) (*AttemptListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if errs := s.validator.Rules(&req.DateRange); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultAttemptPageSize
	}

	attempts, total, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{
		UserID:   principal.UserID,
		ExamKind: req.ExamType,
		ExamID:   req.ExamID,
		DateFrom: req.From,
		DateTo:   req.To,
		Limit:    limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return &AttemptListResponse{
		Attempts: attempts,
		Total:    total,
		Limit:    limit,
		Offset:   req.Offset,
	}, nil
}

func clampTimeTaken(seconds, limit int) int {
	if seconds < 0 {
		return 0
	}
	if limit > 0 && seconds > limit {
		return limit
	}
	return seconds
}
