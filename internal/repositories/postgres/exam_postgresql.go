package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *ExamPostgreSQL) GetByRef(ctx context.Context, tx *gorm.DB, ref models.ExamRef) (*models.Exam, error) {
	db := e.helpers.getDB(tx).WithContext(ctx)

	switch ref.Kind {
	case models.ExamKindMock:
		var row mockExamRow
		if err := db.First(&row, ref.ID).Error; err != nil {
			return nil, translateError(err)
		}
		return row.toModel(models.ExamKindMock), nil
	case models.ExamKindPractice:
		var row practiceTestRow
		if err := db.First(&row, ref.ID).Error; err != nil {
			return nil, translateError(err)
		}
		return row.toModel(models.ExamKindPractice), nil
	default:
		return nil, fmt.Errorf("unknown exam kind %q", ref.Kind)
	}
}

// CreateMock inserts a mock exam header and sets exam.ID.
func (e *ExamPostgreSQL) CreateMock(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	row := mockExamRow{ExamColumns: examColumnsFromModel(exam)}
	row.ID = 0
	if err := e.helpers.getDB(tx).WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	exam.ID = row.ID
	exam.Kind = models.ExamKindMock
	exam.CreatedAt = row.CreatedAt
	exam.UpdatedAt = row.UpdatedAt
	return nil
}

// DeleteMock removes a mock header together with its link rows.
func (e *ExamPostgreSQL) DeleteMock(ctx context.Context, tx *gorm.DB, id uint) error {
	db := e.helpers.getDB(tx).WithContext(ctx)
	if err := db.Where("exam_id = ?", id).Delete(&mockExamQuestionRow{}).Error; err != nil {
		return err
	}
	result := db.Delete(&mockExamRow{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (e *ExamPostgreSQL) ListByBlueprint(ctx context.Context, tx *gorm.DB, blueprintID uint) ([]*models.Exam, error) {
	var rows []mockExamRow
	if err := e.helpers.getDB(tx).WithContext(ctx).
		Where("blueprint_id = ?", blueprintID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	exams := make([]*models.Exam, len(rows))
	for i := range rows {
		exams[i] = rows[i].toModel(models.ExamKindMock)
	}
	return exams, nil
}
