package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/cache"
	"github.com/SAP-F-2025/examprep-service/internal/events"
	"github.com/SAP-F-2025/examprep-service/internal/generator"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type blueprintService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	lockTTL   time.Duration

	// rng is shared across runs; rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewBlueprintService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	lockTTL time.Duration,
	rng *rand.Rand,
) BlueprintService {
	if rng == nil {
		rng = generator.NewRand()
	}
	return &blueprintService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		lockTTL:   lockTTL,
		rng:       rng,
	}
}

// ===== BLUEPRINT OPERATIONS =====

func (s *blueprintService) Create(ctx context.Context, req *BlueprintRequest, principal models.Principal) (*BlueprintResponse, error) {
	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.UserID, 0, "blueprint", "create", "admin role required")
	}

	blueprint, err := s.toModel(req)
	if err != nil {
		return nil, err
	}
	blueprint.CreatedBy = principal.UserID

	// Lock before saving so a busy generator rejects the request with nothing stored.
	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.repo.Blueprint().Create(ctx, nil, blueprint); err != nil {
		return nil, fmt.Errorf("failed to create blueprint: %w", err)
	}

	s.logger.Info("Blueprint created",
		"blueprint_id", blueprint.ID,
		"course_id", blueprint.CourseID,
		"subjects", len(blueprint.Items),
		"created_by", principal.UserID)

	return &BlueprintResponse{
		Blueprint:  blueprint,
		Generation: s.runAfterSave(ctx, blueprint, req.Publish, principal),
	}, nil
}

// Update replaces the blueprint fields and items, then generates from the new version.
func (s *blueprintService) Update(ctx context.Context, id uint, req *BlueprintRequest, principal models.Principal) (*BlueprintResponse, error) {
	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.UserID, id, "blueprint", "update", "admin role required")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blueprint, err := s.toModel(req)
	if err != nil {
		return nil, err
	}
	blueprint.ID = id
	blueprint.CreatedBy = existing.CreatedBy
	blueprint.CreatedAt = existing.CreatedAt

	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.repo.Blueprint().Update(ctx, nil, blueprint); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBlueprintNotFound
		}
		return nil, fmt.Errorf("failed to update blueprint: %w", err)
	}

	s.logger.Info("Blueprint updated", "blueprint_id", id, "updated_by", principal.UserID)

	return &BlueprintResponse{
		Blueprint:  blueprint,
		Generation: s.runAfterSave(ctx, blueprint, req.Publish, principal),
	}, nil
}

func (s *blueprintService) GetByID(ctx context.Context, id uint) (*models.MockBlueprint, error) {
	blueprint, err := s.repo.Blueprint().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBlueprintNotFound
		}
		return nil, fmt.Errorf("failed to get blueprint: %w", err)
	}
	return blueprint, nil
}

func (s *blueprintService) Generate(ctx context.Context, id uint, publish bool, principal models.Principal) (*models.GenerationResult, error) {
	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.UserID, id, "blueprint", "generate", "admin role required")
	}

	blueprint, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.run(ctx, blueprint, publish, principal)
}

// runAfterSave runs generation for a blueprint that is already committed.
// A failed run must not fail the save, so it comes back as a warning.
func (s *blueprintService) runAfterSave(ctx context.Context, blueprint *models.MockBlueprint, publish bool, principal models.Principal) *models.GenerationResult {
	result, err := s.run(ctx, blueprint, publish, principal)
	if err == nil {
		return result
	}
	s.logger.Error("Generation after blueprint save failed", "blueprint_id", blueprint.ID, "error", err)
	return &models.GenerationResult{
		BlueprintID:  blueprint.ID,
		GeneratedIDs: []uint{},
		Warnings:     []string{fmt.Sprintf("generation failed, blueprint saved: %v", err)},
	}
}

func (s *blueprintService) toModel(req *BlueprintRequest) (*models.MockBlueprint, error) {
	if err := s.validator.Tags(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var blueprint models.MockBlueprint
	if err := copier.Copy(&blueprint, req); err != nil {
		return nil, fmt.Errorf("failed to map blueprint: %w", err)
	}
	for i := range blueprint.Items {
		blueprint.Items[i].Position = i
	}

	if errs := s.validator.Rules(&blueprint); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}
	return &blueprint, nil
}

// ===== GENERATION =====

// run creates as many disjoint exam-wide mocks as the pools allow. The caller
// holds the generation lock. It is best effort: a failing mock is skipped and
// reported in the warnings.
func (s *blueprintService) run(ctx context.Context, blueprint *models.MockBlueprint, publish bool, principal models.Principal) (*models.GenerationResult, error) {
	result := &models.GenerationResult{
		BlueprintID:  blueprint.ID,
		GeneratedIDs: []uint{},
		Warnings:     []string{},
	}

	used, err := s.repo.Question().UsedInExamWideMocks(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load used questions: %w", err)
	}

	pools := make(map[uint][]uint)
	for _, req := range generator.Requirements(blueprint.Items) {
		ids, err := s.repo.Question().ListPoolBySubject(ctx, nil, req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pool for subject %d: %w", req.SubjectID, err)
		}
		eligible := make([]uint, 0, len(ids))
		for _, id := range ids {
			if _, taken := used[id]; !taken {
				eligible = append(eligible, id)
			}
		}
		pools[req.SubjectID] = eligible
	}

	s.rngMu.Lock()
	plan := generator.Build(blueprint.Items, pools, s.rng)
	s.rngMu.Unlock()
	result.Warnings = append(result.Warnings, plan.Warnings...)

	existing, err := s.repo.Exam().ListByBlueprint(ctx, nil, blueprint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated mocks: %w", err)
	}
	seq := len(existing)

	for i, inst := range plan.Instances {
		ids := inst.QuestionIDs()
		courseID := blueprint.CourseID
		blueprintID := blueprint.ID
		exam := &models.Exam{
			Kind:            models.ExamKindMock,
			Title:           fmt.Sprintf("%s - Mock %d", blueprint.Title, seq+i+1),
			DurationMinutes: blueprint.DurationMinutes,
			TotalMarks:      blueprint.TotalMarks,
			TotalQuestions:  len(ids),
			Marking:         blueprint.Marking,
			CourseID:        &courseID,
			BlueprintID:     &blueprintID,
			Published:       publish,
		}

		err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := s.repo.Exam().CreateMock(ctx, tx, exam); err != nil {
				return fmt.Errorf("failed to create exam: %w", err)
			}
			if err := s.repo.Question().LinkToMock(ctx, tx, exam.ID, ids); err != nil {
				return fmt.Errorf("failed to link questions: %w", err)
			}
			return nil
		})
		if err != nil {
			s.logger.Error("Failed to generate mock",
				"blueprint_id", blueprint.ID,
				"index", i,
				"exam_id", exam.ID,
				"error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("mock %d: %v", i+1, err))
			s.dropOrphanHeader(ctx, exam.ID, i, result)
			continue
		}

		result.GeneratedIDs = append(result.GeneratedIDs, exam.ID)
	}
	result.GeneratedCount = len(result.GeneratedIDs)

	s.logger.Info("Mock generation finished",
		"blueprint_id", blueprint.ID,
		"planned", plan.MaxTests,
		"generated", result.GeneratedCount,
		"warnings", len(result.Warnings))

	if result.GeneratedCount > 0 {
		if err := s.publisher.Publish(ctx, events.NewMocksGeneratedEvent(blueprint, result, principal.UserID)); err != nil {
			s.logger.Warn("Failed to publish mocks generated event", "blueprint_id", blueprint.ID, "error", err)
		}
	}

	return result, nil
}

// dropOrphanHeader deletes a header that survived a failed transaction.
// Normally the rollback already removed it and the delete finds nothing.
func (s *blueprintService) dropOrphanHeader(ctx context.Context, examID uint, index int, result *models.GenerationResult) {
	if examID == 0 {
		return
	}
	err := s.repo.Exam().DeleteMock(ctx, nil, examID)
	if err == nil || repositories.IsNotFoundError(err) {
		return
	}
	s.logger.Error("Failed to roll back mock header", "exam_id", examID, "error", err)
	result.Warnings = append(result.Warnings, fmt.Sprintf("mock %d: rollback of exam %d failed: %v", index+1, examID, err))
}

// acquireLock serialises generation runs across instances. Without a cache
// runs are not serialised.
func (s *blueprintService) acquireLock(ctx context.Context) (func(), error) {
	noop := func() {}
	if s.cache == nil || s.lockTTL <= 0 {
		return noop, nil
	}

	release, err := s.cache.AcquireLock(ctx, cache.GenerationLockKey(), s.lockTTL)
	switch {
	case errors.Is(err, cache.ErrLockHeld):
		return nil, ErrGenerationInProgress
	case err != nil:
		s.logger.Warn("Generation lock unavailable, continuing without it", "error", err)
		return noop, nil
	}

	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = release(releaseCtx)
	}, nil
}
