package models

// SessionExam is the exam header sent to a student before a session starts.
type SessionExam struct {
	ID              uint          `json:"id"`
	Kind            ExamKind      `json:"kind"`
	Title           string        `json:"title"`
	DurationMinutes int           `json:"duration_minutes"`
	TotalMarks      float64       `json:"total_marks"`
	TotalQuestions  int           `json:"total_questions"`
	NegativeMarking bool          `json:"negative_marking"`
	Marking         MarkingScheme `json:"marking"`
}

func (e SessionExam) Ref() ExamRef {
	return ExamRef{Kind: e.Kind, ID: e.ID}
}

// SessionPayload is everything a session needs; it is fetched once and never refreshed mid-session.
type SessionPayload struct {
	Exam      SessionExam       `json:"exam"`
	Questions []SessionQuestion `json:"questions"`
}
