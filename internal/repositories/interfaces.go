package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError matches both the repository sentinel and gorm's.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	UserID    string           `json:"user_id"`
	ExamKind  *models.ExamKind `json:"exam_type"`
	ExamID    *uint            `json:"exam_id"`
	DateFrom  *time.Time       `json:"date_from"`
	DateTo    *time.Time       `json:"date_to"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "score", "percentage"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

// Every method takes an optional transaction; nil means the repository's own connection.

// ExamRepository reads exam headers of both variants and creates generated mocks.
type ExamRepository interface {
	GetByRef(ctx context.Context, tx *gorm.DB, ref models.ExamRef) (*models.Exam, error)

	// Generation support
	CreateMock(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	DeleteMock(ctx context.Context, tx *gorm.DB, id uint) error
	ListByBlueprint(ctx context.Context, tx *gorm.DB, blueprintID uint) ([]*models.Exam, error)
}

// QuestionRepository reads the authoritative question/option store.
type QuestionRepository interface {
	// ListForExam returns the exam's questions in display order with the
	// correctness flag populated on every option.
	ListForExam(ctx context.Context, tx *gorm.DB, ref models.ExamRef) ([]models.Question, error)

	// Bank pools
	ListPoolBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error)
	UsedInExamWideMocks(ctx context.Context, tx *gorm.DB) (map[uint]struct{}, error)
	LinkToMock(ctx context.Context, tx *gorm.DB, examID uint, questionIDs []uint) error
}

// AttemptRepository is append-only: attempts are never updated or deleted.
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.Attempt, int64, error)
}

type BlueprintRepository interface {
	Create(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MockBlueprint, error)
	// Update overwrites the header and replaces the item list.
	Update(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error
}

// Repository bundles the repositories behind one connection.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Blueprint() BlueprintRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}
