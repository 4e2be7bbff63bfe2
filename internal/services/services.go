package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/cache"
	"github.com/SAP-F-2025/examprep-service/internal/events"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
)

// ===== SERVICE INTERFACES =====

type ExamSessionService interface {
	// GetPayload returns the student view of an exam. Correctness flags are never included.
	GetPayload(ctx context.Context, ref models.ExamRef, principal models.Principal) (*models.SessionPayload, error)
	InvalidatePayload(ctx context.Context, ref models.ExamRef) error
	InvalidateKind(ctx context.Context, kind models.ExamKind) error
}

type AttemptService interface {
	Submit(ctx context.Context, req *SubmitAttemptRequest, principal models.Principal) (*SubmitAttemptResponse, error)
	GetByID(ctx context.Context, id uint, principal models.Principal) (*models.Attempt, error)
	List(ctx context.Context, req *AttemptListRequest, principal models.Principal) (*AttemptListResponse, error)
}

type BlueprintService interface {
	Create(ctx context.Context, req *BlueprintRequest, principal models.Principal) (*BlueprintResponse, error)
	Update(ctx context.Context, id uint, req *BlueprintRequest, principal models.Principal) (*BlueprintResponse, error)
	GetByID(ctx context.Context, id uint) (*models.MockBlueprint, error)
	Generate(ctx context.Context, id uint, publish bool, principal models.Principal) (*models.GenerationResult, error)
}

type ExportService interface {
	// ExportAttempts writes an XLSX workbook with the exam's attempts inside window.
	ExportAttempts(ctx context.Context, ref models.ExamRef, window models.DateRange, w io.Writer) error
}

// ===== MANAGER =====

type Options struct {
	SessionCacheTTL   time.Duration
	GenerationLockTTL time.Duration
	// Rand overrides the shuffle source used by mock generation.
	Rand *rand.Rand
}

type ServiceManager struct {
	ExamSession ExamSessionService
	Attempt     AttemptService
	Blueprint   BlueprintService
	Export      ExportService
}

// NewServiceManager wires every service. cacheService may be nil when redis
// is not configured.
func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts Options,
) *ServiceManager {
	return &ServiceManager{
		ExamSession: NewExamSessionService(repo, cacheService, logger, opts.SessionCacheTTL),
		Attempt:     NewAttemptService(repo, publisher, logger, validator),
		Blueprint:   NewBlueprintService(repo, cacheService, publisher, logger, validator, opts.GenerationLockTTL, opts.Rand),
		Export:      NewExportService(repo, logger, validator),
	}
}
