package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/cache"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/jinzhu/copier"
)

type examSessionService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
	ttl    time.Duration
}

func NewExamSessionService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, ttl time.Duration) ExamSessionService {
	return &examSessionService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		ttl:    ttl,
	}
}

func (s *examSessionService) GetPayload(ctx context.Context, ref models.ExamRef, principal models.Principal) (*models.SessionPayload, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidExamKind
	}

	exam, err := loadExam(ctx, s.repo, ref, principal)
	if err != nil {
		return nil, err
	}

	key := cache.SessionPayloadKey(string(ref.Kind), ref.ID)
	if s.cache != nil {
		var cached models.SessionPayload
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			return &cached, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn("Session payload cache unavailable", "exam", ref.String(), "error", err)
		}
	}

	questions, err := s.repo.Question().ListForExam(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	payload, err := buildPayload(exam, questions)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("Failed to cache session payload", "exam", ref.String(), "error", err)
		}
	}

	s.logger.Debug("Session payload built",
		"exam", ref.String(),
		"questions", len(payload.Questions))

	return payload, nil
}

func (s *examSessionService) InvalidatePayload(ctx context.Context, ref models.ExamRef) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cache.SessionPayloadKey(string(ref.Kind), ref.ID))
}

// InvalidateKind drops every cached payload of one exam kind, e.g. after a
// bulk content import.
func (s *examSessionService) InvalidateKind(ctx context.Context, kind models.ExamKind) error {
	if !kind.Valid() {
		return ErrInvalidExamKind
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, cache.SessionPayloadPattern(string(kind))); err != nil {
		return fmt.Errorf("failed to invalidate %s payloads: %w", kind, err)
	}
	s.logger.Info("Session payloads invalidated", "exam_type", kind)
	return nil
}

// loadExam fetches the header and hides unpublished exams from students.
func loadExam(ctx context.Context, repo repositories.Repository, ref models.ExamRef, principal models.Principal) (*models.Exam, error) {
	exam, err := repo.Exam().GetByRef(ctx, nil, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if !exam.Published && !principal.IsAdmin() {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

func buildPayload(exam *models.Exam, questions []models.Question) (*models.SessionPayload, error) {
	var header models.SessionExam
	if err := copier.Copy(&header, exam); err != nil {
		return nil, fmt.Errorf("failed to map exam header: %w", err)
	}
	header.NegativeMarking = exam.Marking.NegativeMarking()
	header.TotalQuestions = len(questions)

	view := make([]models.SessionQuestion, len(questions))
	for i := range questions {
		view[i] = questions[i].ToSession()
	}
	return &models.SessionPayload{Exam: header, Questions: view}, nil
}
