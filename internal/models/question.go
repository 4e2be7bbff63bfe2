package models

import (
	"errors"
	"time"
)

// ParentKind tags the owner of a question.
type ParentKind string

const (
	// ParentPrep is a question bank (module) question used for preparation and mock generation.
	ParentPrep     ParentKind = "prep"
	ParentMock     ParentKind = "mock"
	ParentPractice ParentKind = "practice"
)

var ErrInvalidParent = errors.New("question must have exactly one parent")

// ParentRef is the normalized owner of a question.
type ParentRef struct {
	Kind ParentKind `json:"kind"`
	ID   uint       `json:"id"`
}

// ParentForExam returns the parent reference of a question owned directly by an exam.
func ParentForExam(ref ExamRef) ParentRef {
	if ref.Kind == ExamKindPractice {
		return ParentRef{Kind: ParentPractice, ID: ref.ID}
	}
	return ParentRef{Kind: ParentMock, ID: ref.ID}
}

// Question carries the authoritative option set including correctness flags.
// It must never be serialized to a student while the exam is in progress.
type Question struct {
	ID          uint      `json:"id"`
	Parent      ParentRef `json:"parent"`
	Text        string    `json:"text"`
	Direction   *string   `json:"direction,omitempty"`
	OrderIndex  int       `json:"order_index"`
	Explanation string    `json:"explanation,omitempty"`
	Options     []Option  `json:"options"`
	CreatedAt   time.Time `json:"created_at"`
}

// CorrectOptionID returns the option flagged correct. ok is false when no
// option carries the flag, in which case the question can never be scored correct.
func (q *Question) CorrectOptionID() (id uint, ok bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID, true
		}
	}
	return 0, false
}

type Option struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"-"`
}

// SessionQuestion is the student-facing projection of a question.
type SessionQuestion struct {
	ID        uint            `json:"id"`
	Text      string          `json:"text"`
	Direction *string         `json:"direction,omitempty"`
	Options   []SessionOption `json:"options"`
}

type SessionOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// ToSession strips correctness information.
func (q *Question) ToSession() SessionQuestion {
	opts := make([]SessionOption, len(q.Options))
	for i, o := range q.Options {
		opts[i] = SessionOption{ID: o.ID, Text: o.Text}
	}
	return SessionQuestion{
		ID:        q.ID,
		Text:      q.Text,
		Direction: q.Direction,
		Options:   opts,
	}
}

// Subject groups question banks.
type Subject struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID *uint  `json:"course_id" gorm:"index"`
	Name     string `json:"name" gorm:"not null;size:200"`
}

func (Subject) TableName() string {
	return "subjects"
}

// QuestionBank (module) owns prep questions for one subject.
type QuestionBank struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null;size:200"`
}

func (QuestionBank) TableName() string {
	return "modules"
}
