package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func preloadOptions(db *gorm.DB) *gorm.DB {
	return db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("options.id")
	})
}

// ListForExam returns owned questions first, then questions linked through
// mock_exam_questions in position order. A question appears once.
func (q *QuestionPostgreSQL) ListForExam(ctx context.Context, tx *gorm.DB, ref models.ExamRef) ([]models.Question, error) {
	db := q.helpers.getDB(tx).WithContext(ctx)

	var owned []questionRow
	column := "exam_id"
	if ref.Kind == models.ExamKindPractice {
		column = "practice_test_id"
	}
	if err := preloadOptions(db).
		Where(column+" = ?", ref.ID).
		Order("order_index").Order("id").
		Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}

	var linked []questionRow
	if ref.Kind == models.ExamKindMock {
		if err := preloadOptions(db).
			Select("questions.*").
			Joins("JOIN mock_exam_questions ON mock_exam_questions.question_id = questions.id").
			Where("mock_exam_questions.exam_id = ?", ref.ID).
			Order("mock_exam_questions.position").
			Find(&linked).Error; err != nil {
			return nil, fmt.Errorf("failed to load linked questions: %w", err)
		}
	}

	seen := make(map[uint]struct{}, len(owned)+len(linked))
	questions := make([]models.Question, 0, len(owned)+len(linked))
	for _, rows := range [][]questionRow{owned, linked} {
		for i := range rows {
			if _, dup := seen[rows[i].ID]; dup {
				continue
			}
			seen[rows[i].ID] = struct{}{}
			question, err := rows[i].toModel()
			if err != nil {
				return nil, err
			}
			questions = append(questions, question)
		}
	}
	return questions, nil
}

// ListPoolBySubject returns the IDs of all bank questions under the subject's modules.
func (q *QuestionPostgreSQL) ListPoolBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error) {
	db := q.helpers.getDB(tx).WithContext(ctx)

	var ids []uint
	modules := db.Model(&models.QuestionBank{}).Select("id").Where("subject_id = ?", subjectID)
	if err := db.Model(&questionRow{}).
		Where("module_id IN (?)", modules).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UsedInExamWideMocks returns every question already placed in an exam-wide
// mock, either owned by it or linked to it.
func (q *QuestionPostgreSQL) UsedInExamWideMocks(ctx context.Context, tx *gorm.DB) (map[uint]struct{}, error) {
	db := q.helpers.getDB(tx).WithContext(ctx)
	examWide := db.Model(&mockExamRow{}).Select("id").Where("subject_id IS NULL")

	var linked []uint
	if err := db.Model(&mockExamQuestionRow{}).
		Where("exam_id IN (?)", examWide).
		Pluck("question_id", &linked).Error; err != nil {
		return nil, err
	}

	var owned []uint
	if err := db.Model(&questionRow{}).
		Where("exam_id IN (?)", examWide).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}

	used := make(map[uint]struct{}, len(linked)+len(owned))
	for _, id := range linked {
		used[id] = struct{}{}
	}
	for _, id := range owned {
		used[id] = struct{}{}
	}
	return used, nil
}

// LinkToMock attaches bank questions to a mock in the given order.
func (q *QuestionPostgreSQL) LinkToMock(ctx context.Context, tx *gorm.DB, examID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	links := make([]mockExamQuestionRow, len(questionIDs))
	for i, id := range questionIDs {
		links[i] = mockExamQuestionRow{ExamID: examID, QuestionID: id, Position: i}
	}
	return q.helpers.getDB(tx).WithContext(ctx).CreateInBatches(links, 500).Error
}
