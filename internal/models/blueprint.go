package models

import (
	"time"
)

// MockBlueprint is an admin template used to stamp out exam-wide mocks.
// Generation never consumes or modifies it.
type MockBlueprint struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	CourseID        uint          `json:"course_id" gorm:"not null;index"`
	Title           string        `json:"title" gorm:"not null;size:200"`
	DurationMinutes int           `json:"duration_minutes" gorm:"not null"`
	TotalMarks      float64       `json:"total_marks" gorm:"not null"`
	Marking         MarkingScheme `json:"marking" gorm:"embedded"`
	CreatedBy       string        `json:"created_by" gorm:"size:255;index"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Items []BlueprintItem `json:"items" gorm:"foreignKey:BlueprintID;constraint:OnDelete:CASCADE"`
}

func (MockBlueprint) TableName() string {
	return "mock_blueprints"
}

// TotalQuestions sums the per-subject counts.
func (b *MockBlueprint) TotalQuestions() int {
	total := 0
	for _, it := range b.Items {
		total += it.QuestionCount
	}
	return total
}

type BlueprintItem struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	BlueprintID   uint `json:"blueprint_id" gorm:"not null;index"`
	SubjectID     uint `json:"subject_id" gorm:"not null"`
	QuestionCount int  `json:"question_count" gorm:"not null"`
	Position      int  `json:"position" gorm:"not null;default:0"`
}

func (BlueprintItem) TableName() string {
	return "mock_blueprint_items"
}

// GenerationResult reports one bulk generation run.
type GenerationResult struct {
	BlueprintID    uint     `json:"blueprint_id"`
	GeneratedCount int      `json:"generated_count"`
	GeneratedIDs   []uint   `json:"generated_ids"`
	Warnings       []string `json:"warnings"`
}
