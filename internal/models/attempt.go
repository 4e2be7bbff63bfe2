package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// DateRange bounds attempts by submission time. Either end may be open and
// both ends are inclusive. Query values use RFC 3339.
type DateRange struct {
	From *time.Time `form:"date_from" json:"date_from,omitempty"`
	To   *time.Time `form:"date_to" json:"date_to,omitempty"`
}

// AnswerMap maps a question ID to the selected option ID.
type AnswerMap map[uint]uint

// Clone returns an independent copy, used to freeze answers at submission.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts string keys as sent by browsers and rejects non-numeric ones.
func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	var raw map[string]uint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(AnswerMap, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return err
		}
		out[uint(id)] = v
	}
	*m = out
	return nil
}

// QuestionStatus is the navigation/review state of a question in a session.
type QuestionStatus string

const (
	StatusNotVisited   QuestionStatus = "not_visited"
	StatusNotAnswered  QuestionStatus = "not_answered"
	StatusAnswered     QuestionStatus = "answered"
	StatusReview       QuestionStatus = "review"
	StatusAnsAndReview QuestionStatus = "ans_and_review"
)

// Attempt is the immutable record of one submission.
type Attempt struct {
	ID               uint      `json:"id"`
	UserID           string    `json:"user_id"`
	Exam             ExamRef   `json:"exam"`
	Answers          AnswerMap `json:"answers"`
	Score            float64   `json:"score"`
	TotalMarks       float64   `json:"total_marks"`
	Percentage       float64   `json:"percentage"`
	Correct          int       `json:"correct"`
	Incorrect        int       `json:"incorrect"`
	Unattempted      int       `json:"unattempted"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}
