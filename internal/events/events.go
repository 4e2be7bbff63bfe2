package events

import (
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the kinds of domain events this service emits
type EventType string

const (
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventMocksGenerated   EventType = "mock.generated"
)

const (
	eventSource  = "examprep-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptSubmittedEvent struct {
	AttemptID        uint            `json:"attempt_id"`
	UserID           string          `json:"user_id"`
	ExamID           uint            `json:"exam_id"`
	ExamType         models.ExamKind `json:"exam_type"`
	Score            float64         `json:"score"`
	TotalMarks       float64         `json:"total_marks"`
	Percentage       float64         `json:"percentage"`
	TimeTakenSeconds int             `json:"time_taken_seconds"`
	SubmittedAt      time.Time       `json:"submitted_at"`
}

type MocksGeneratedEvent struct {
	BlueprintID    uint     `json:"blueprint_id"`
	CourseID       uint     `json:"course_id"`
	GeneratedIDs   []uint   `json:"generated_ids"`
	GeneratedCount int      `json:"generated_count"`
	Warnings       []string `json:"warnings,omitempty"`
	TriggeredBy    string   `json:"triggered_by"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAttemptSubmittedEvent(attempt *models.Attempt) *Event {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:        attempt.ID,
		UserID:           attempt.UserID,
		ExamID:           attempt.Exam.ID,
		ExamType:         attempt.Exam.Kind,
		Score:            attempt.Score,
		TotalMarks:       attempt.TotalMarks,
		Percentage:       attempt.Percentage,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		SubmittedAt:      attempt.CreatedAt,
	})
}

func NewMocksGeneratedEvent(blueprint *models.MockBlueprint, result *models.GenerationResult, triggeredBy string) *Event {
	return newEvent(EventMocksGenerated, MocksGeneratedEvent{
		BlueprintID:    blueprint.ID,
		CourseID:       blueprint.CourseID,
		GeneratedIDs:   result.GeneratedIDs,
		GeneratedCount: result.GeneratedCount,
		Warnings:       result.Warnings,
		TriggeredBy:    triggeredBy,
	})
}
