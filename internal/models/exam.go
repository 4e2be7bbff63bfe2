package models

import (
	"fmt"
	"time"
)

// ExamKind tags which of the two parallel exam variants a record belongs to.
type ExamKind string

const (
	ExamKindMock     ExamKind = "mock"
	ExamKindPractice ExamKind = "practice"
)

func (k ExamKind) Valid() bool {
	return k == ExamKindMock || k == ExamKindPractice
}

// ExamRef identifies one exam of either variant.
type ExamRef struct {
	Kind ExamKind `json:"kind"`
	ID   uint     `json:"id"`
}

func (r ExamRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// MarkingScheme holds the per-question contribution for each outcome.
// Incorrect is usually zero or negative.
type MarkingScheme struct {
	Correct     float64 `json:"correct" gorm:"column:marks_correct;not null"`
	Incorrect   float64 `json:"incorrect" gorm:"column:marks_incorrect;not null"`
	Unattempted float64 `json:"unattempted" gorm:"column:marks_unattempted;not null"`
}

func (m MarkingScheme) NegativeMarking() bool {
	return m.Incorrect < 0
}

// Exam is the header of a mock exam or practice test.
type Exam struct {
	ID              uint          `json:"id"`
	Kind            ExamKind      `json:"kind"`
	Title           string        `json:"title"`
	DurationMinutes int           `json:"duration_minutes"`
	TotalMarks      float64       `json:"total_marks"`
	TotalQuestions  int           `json:"total_questions"`
	Marking         MarkingScheme `json:"marking"`
	CourseID        *uint         `json:"course_id,omitempty"`
	// SubjectID is nil for an exam-wide mock spanning several subjects.
	SubjectID   *uint     `json:"subject_id,omitempty"`
	BlueprintID *uint     `json:"blueprint_id,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Exam) Ref() ExamRef {
	return ExamRef{Kind: e.Kind, ID: e.ID}
}

// DurationSeconds is the countdown budget of a session.
func (e *Exam) DurationSeconds() int {
	return e.DurationMinutes * 60
}

// IsExamWide reports whether the exam is a composite mock with no subject.
func (e *Exam) IsExamWide() bool {
	return e.Kind == ExamKindMock && e.SubjectID == nil
}
