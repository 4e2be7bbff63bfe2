package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Row types mirror the platform tables. The tagged-union columns on questions
// and test_attempts never leave this package.

// ExamColumns is shared by both exam header tables. It must stay exported:
// gorm skips anonymous fields of unexported struct type.
type ExamColumns struct {
	ID              uint    `gorm:"primaryKey"`
	Title           string  `gorm:"not null;size:200"`
	DurationMinutes int     `gorm:"not null"`
	TotalMarks      float64 `gorm:"not null;default:0"`
	TotalQuestions  int     `gorm:"not null;default:0"`
	models.MarkingScheme
	CourseID    *uint `gorm:"index"`
	SubjectID   *uint `gorm:"index"`
	BlueprintID *uint `gorm:"index"`
	IsPublished bool  `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type mockExamRow struct {
	ExamColumns
}

func (mockExamRow) TableName() string { return "mock_exams" }

type practiceTestRow struct {
	ExamColumns
}

func (practiceTestRow) TableName() string { return "practice_tests" }

func (c *ExamColumns) toModel(kind models.ExamKind) *models.Exam {
	return &models.Exam{
		ID:              c.ID,
		Kind:            kind,
		Title:           c.Title,
		DurationMinutes: c.DurationMinutes,
		TotalMarks:      c.TotalMarks,
		TotalQuestions:  c.TotalQuestions,
		Marking:         c.MarkingScheme,
		CourseID:        c.CourseID,
		SubjectID:       c.SubjectID,
		BlueprintID:     c.BlueprintID,
		Published:       c.IsPublished,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func examColumnsFromModel(e *models.Exam) ExamColumns {
	return ExamColumns{
		ID:              e.ID,
		Title:           e.Title,
		DurationMinutes: e.DurationMinutes,
		TotalMarks:      e.TotalMarks,
		TotalQuestions:  e.TotalQuestions,
		MarkingScheme:   e.Marking,
		CourseID:        e.CourseID,
		SubjectID:       e.SubjectID,
		BlueprintID:     e.BlueprintID,
		IsPublished:     e.Published,
	}
}

type questionRow struct {
	ID             uint    `gorm:"primaryKey"`
	ModuleID       *uint   `gorm:"index"`
	ExamID         *uint   `gorm:"index"`
	PracticeTestID *uint   `gorm:"index"`
	QuestionText   string  `gorm:"type:text;not null"`
	Direction      *string `gorm:"type:text"`
	OrderIndex     int     `gorm:"not null;default:0"`
	Explanation    string  `gorm:"type:text"`
	CreatedAt      time.Time

	Options []optionRow `gorm:"foreignKey:QuestionID"`
}

func (questionRow) TableName() string { return "questions" }

type optionRow struct {
	ID         uint   `gorm:"primaryKey"`
	QuestionID uint   `gorm:"not null;index"`
	OptionText string `gorm:"type:text;not null"`
	IsCorrect  bool   `gorm:"not null"`
}

func (optionRow) TableName() string { return "options" }

// mockExamQuestionRow links a generated mock to a bank question.
type mockExamQuestionRow struct {
	ExamID     uint `gorm:"primaryKey"`
	QuestionID uint `gorm:"primaryKey;index"`
	Position   int  `gorm:"not null"`
}

func (mockExamQuestionRow) TableName() string { return "mock_exam_questions" }

func (r *questionRow) parent() (models.ParentRef, error) {
	var refs []models.ParentRef
	if r.ModuleID != nil {
		refs = append(refs, models.ParentRef{Kind: models.ParentPrep, ID: *r.ModuleID})
	}
	if r.ExamID != nil {
		refs = append(refs, models.ParentRef{Kind: models.ParentMock, ID: *r.ExamID})
	}
	if r.PracticeTestID != nil {
		refs = append(refs, models.ParentRef{Kind: models.ParentPractice, ID: *r.PracticeTestID})
	}
	if len(refs) != 1 {
		return models.ParentRef{}, fmt.Errorf("question %d: %w", r.ID, models.ErrInvalidParent)
	}
	return refs[0], nil
}

func (r *questionRow) toModel() (models.Question, error) {
	parent, err := r.parent()
	if err != nil {
		return models.Question{}, err
	}
	q := models.Question{
		ID:          r.ID,
		Parent:      parent,
		Text:        r.QuestionText,
		Direction:   r.Direction,
		OrderIndex:  r.OrderIndex,
		Explanation: r.Explanation,
		CreatedAt:   r.CreatedAt,
		Options:     make([]models.Option, len(r.Options)),
	}
	for i, o := range r.Options {
		q.Options[i] = models.Option{ID: o.ID, QuestionID: o.QuestionID, Text: o.OptionText, IsCorrect: o.IsCorrect}
	}
	return q, nil
}

type attemptRow struct {
	ID               uint           `gorm:"primaryKey"`
	UserID           string         `gorm:"size:255;not null;index"`
	ExamID           *uint          `gorm:"index"`
	PracticeTestID   *uint          `gorm:"index"`
	Answers          datatypes.JSON `gorm:"not null"`
	Score            float64        `gorm:"not null"`
	TotalMarks       float64        `gorm:"not null"`
	Percentage       float64        `gorm:"not null"`
	CorrectCount     int            `gorm:"not null"`
	IncorrectCount   int            `gorm:"not null"`
	UnattemptedCount int            `gorm:"not null"`
	TimeTakenSeconds int            `gorm:"not null"`
	CreatedAt        time.Time      `gorm:"index"`
}

func (attemptRow) TableName() string { return "test_attempts" }

func attemptRowFromModel(a *models.Attempt) (*attemptRow, error) {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	row := &attemptRow{
		UserID:           a.UserID,
		Answers:          datatypes.JSON(answers),
		Score:            a.Score,
		TotalMarks:       a.TotalMarks,
		Percentage:       a.Percentage,
		CorrectCount:     a.Correct,
		IncorrectCount:   a.Incorrect,
		UnattemptedCount: a.Unattempted,
		TimeTakenSeconds: a.TimeTakenSeconds,
	}
	id := a.Exam.ID
	switch a.Exam.Kind {
	case models.ExamKindMock:
		row.ExamID = &id
	case models.ExamKindPractice:
		row.PracticeTestID = &id
	default:
		return nil, fmt.Errorf("unknown exam kind %q", a.Exam.Kind)
	}
	return row, nil
}

func (r *attemptRow) toModel() (*models.Attempt, error) {
	a := &models.Attempt{
		ID:               r.ID,
		UserID:           r.UserID,
		Score:            r.Score,
		TotalMarks:       r.TotalMarks,
		Percentage:       r.Percentage,
		Correct:          r.CorrectCount,
		Incorrect:        r.IncorrectCount,
		Unattempted:      r.UnattemptedCount,
		TimeTakenSeconds: r.TimeTakenSeconds,
		CreatedAt:        r.CreatedAt,
	}
	switch {
	case r.ExamID != nil && r.PracticeTestID == nil:
		a.Exam = models.ExamRef{Kind: models.ExamKindMock, ID: *r.ExamID}
	case r.PracticeTestID != nil && r.ExamID == nil:
		a.Exam = models.ExamRef{Kind: models.ExamKindPractice, ID: *r.PracticeTestID}
	default:
		return nil, fmt.Errorf("attempt %d: exactly one exam reference required", r.ID)
	}
	a.Answers = models.AnswerMap{}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("attempt %d: failed to decode answers: %w", r.ID, err)
		}
	}
	return a, nil
}

// AutoMigrate creates the tables this service reads and writes. In production
// the platform tables already exist and only the additive columns are applied.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Subject{},
		&models.QuestionBank{},
		&mockExamRow{},
		&practiceTestRow{},
		&questionRow{},
		&optionRow{},
		&mockExamQuestionRow{},
		&attemptRow{},
		&models.MockBlueprint{},
		&models.BlueprintItem{},
	)
}
