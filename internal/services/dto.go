package services

import (
	"github.com/SAP-F-2025/examprep-service/internal/models"
)

// ===== ATTEMPT DTOs =====

type SubmitAttemptRequest struct {
	ExamID   uint             `json:"exam_id" validate:"required"`
	ExamType models.ExamKind  `json:"exam_type" validate:"required,exam_kind"`
	Answers  models.AnswerMap `json:"answers"`
	// Clamped into [0, duration] by the service.
	TimeTakenSeconds int `json:"time_taken_seconds"`
}

type SubmitAttemptResponse struct {
	AttemptID      uint    `json:"attempt_id"`
	Score          float64 `json:"score"`
	TotalMarks     float64 `json:"total_marks"`
	Percentage     float64 `json:"percentage"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Unattempted    int     `json:"unattempted"`
	TotalQuestions int     `json:"total_questions"`
}

type AttemptListRequest struct {
	ExamType *models.ExamKind `form:"exam_type" json:"exam_type" validate:"required_with=ExamID,omitempty,exam_kind"`
	ExamID   *uint            `form:"exam_id" json:"exam_id"`
	Limit    int              `form:"limit" json:"limit" validate:"gte=0,lte=100"`
	Offset   int              `form:"offset" json:"offset" validate:"gte=0"`
	models.DateRange
}

type AttemptListResponse struct {
	Attempts []*models.Attempt `json:"attempts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ===== BLUEPRINT DTOs =====

type BlueprintItemRequest struct {
	SubjectID     uint `json:"subject_id" validate:"required"`
	QuestionCount int  `json:"question_count" validate:"required,gt=0"`
}

type BlueprintRequest struct {
	CourseID        uint                   `json:"course_id" validate:"required"`
	Title           string                 `json:"title" validate:"required,max=200"`
	DurationMinutes int                    `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	TotalMarks      float64                `json:"total_marks" validate:"gte=0"`
	Marking         models.MarkingScheme   `json:"marking"`
	Items           []BlueprintItemRequest `json:"items" validate:"required,min=1,dive"`
	// Publish makes generated mocks immediately visible to students.
	Publish bool `json:"publish"`
}

type BlueprintResponse struct {
	Blueprint  *models.MockBlueprint    `json:"blueprint"`
	Generation *models.GenerationResult `json:"generation,omitempty"`
}

type GenerateRequest struct {
	Publish bool `json:"publish"`
}
