package postgres

import (
	"context"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
)

var attemptSortColumns = map[string]string{
	"":           "created_at",
	"created_at": "created_at",
	"score":      "score",
	"percentage": "percentage",
}

// AttemptPostgreSQL stores attempts in test_attempts. There is no update or
// delete path.
type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	row, err := attemptRowFromModel(attempt)
	if err != nil {
		return err
	}
	if err := a.helpers.getDB(tx).WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	attempt.ID = row.ID
	attempt.CreatedAt = row.CreatedAt
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	var row attemptRow
	if err := a.helpers.getDB(tx).WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translateError(err)
	}
	return row.toModel()
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var rows []attemptRow
	var total int64

	// apply filter first
	query := a.helpers.getDB(tx).WithContext(ctx).Model(&attemptRow{})
	query = a.applyFiltersAttempt(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, attemptSortColumns, filters.Limit, filters.Offset)

	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	attempts := make([]*models.Attempt, 0, len(rows))
	for i := range rows {
		attempt, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, total, nil
}

func (a *AttemptPostgreSQL) applyFiltersAttempt(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ExamKind != nil {
		column := "exam_id"
		if *filters.ExamKind == models.ExamKindPractice {
			column = "practice_test_id"
		}
		if filters.ExamID != nil {
			query = query.Where(column+" = ?", *filters.ExamID)
		} else {
			query = query.Where(column + " IS NOT NULL")
		}
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
