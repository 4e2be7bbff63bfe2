package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/cache"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository bundles the mock repositories
type MockRepository struct {
	exams      *MockExamRepository
	questions  *MockQuestionRepository
	attempts   *MockAttemptRepository
	blueprints *MockBlueprintRepository

	// transactions counts WithTransaction calls. The mock has no rollback.
	transactions int
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		exams:      &MockExamRepository{},
		questions:  &MockQuestionRepository{},
		attempts:   &MockAttemptRepository{},
		blueprints: &MockBlueprintRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository           { return m.exams }
func (m *MockRepository) Question() repositories.QuestionRepository   { return m.questions }
func (m *MockRepository) Attempt() repositories.AttemptRepository     { return m.attempts }
func (m *MockRepository) Blueprint() repositories.BlueprintRepository { return m.blueprints }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.transactions++
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) GetByRef(ctx context.Context, tx *gorm.DB, ref models.ExamRef) (*models.Exam, error) {
	args := m.Called(ctx, tx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) CreateMock(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	args := m.Called(ctx, tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) DeleteMock(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockExamRepository) ListByBlueprint(ctx context.Context, tx *gorm.DB, blueprintID uint) ([]*models.Exam, error) {
	args := m.Called(ctx, tx, blueprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exam), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) ListForExam(ctx context.Context, tx *gorm.DB, ref models.ExamRef) ([]models.Question, error) {
	args := m.Called(ctx, tx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListPoolBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error) {
	args := m.Called(ctx, tx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockQuestionRepository) UsedInExamWideMocks(ctx context.Context, tx *gorm.DB) (map[uint]struct{}, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]struct{}), args.Error(1)
}

func (m *MockQuestionRepository) LinkToMock(ctx context.Context, tx *gorm.DB, examID uint, questionIDs []uint) error {
	args := m.Called(ctx, tx, examID, questionIDs)
	return args.Error(0)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	args := m.Called(ctx, tx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

// MockBlueprintRepository is a mock implementation of BlueprintRepository
type MockBlueprintRepository struct {
	mock.Mock
}

func (m *MockBlueprintRepository) Create(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error {
	args := m.Called(ctx, tx, blueprint)
	return args.Error(0)
}

func (m *MockBlueprintRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MockBlueprint, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MockBlueprint), args.Error(1)
}

func (m *MockBlueprintRepository) Update(ctx context.Context, tx *gorm.DB, blueprint *models.MockBlueprint) error {
	args := m.Called(ctx, tx, blueprint)
	return args.Error(0)
}

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

var _ cache.CacheService = (*MockCacheService)(nil)

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCacheService) AcquireLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}
