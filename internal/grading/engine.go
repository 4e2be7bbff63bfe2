// Package grading scores a submitted answer map against an authoritative answer key.
package grading

import (
	"github.com/SAP-F-2025/examprep-service/internal/models"
)

type Outcome string

const (
	OutcomeCorrect     Outcome = "correct"
	OutcomeIncorrect   Outcome = "incorrect"
	OutcomeUnattempted Outcome = "unattempted"
)

// QuestionResult is the verdict for a single question.
type QuestionResult struct {
	QuestionID uint    `json:"question_id"`
	Selected   *uint   `json:"selected,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Marks      float64 `json:"marks"`
}

// Result is the score breakdown of one submission.
type Result struct {
	Score          float64          `json:"score"`
	TotalMarks     float64          `json:"total_marks"`
	Percentage     float64          `json:"percentage"`
	Correct        int              `json:"correct"`
	Incorrect      int              `json:"incorrect"`
	Unattempted    int              `json:"unattempted"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []QuestionResult `json:"questions,omitempty"`
}

// Grade is a pure function of its inputs. Answers for question IDs outside
// questions are ignored. totalMarks is the exam's configured total and is not
// recomputed from the question count.
func Grade(questions []models.Question, answers models.AnswerMap, scheme models.MarkingScheme, totalMarks float64) Result {
	res := Result{
		TotalMarks:     totalMarks,
		TotalQuestions: len(questions),
		Questions:      make([]QuestionResult, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		qr := QuestionResult{QuestionID: q.ID}

		selected, answered := answers[q.ID]
		switch {
		case !answered:
			qr.Outcome = OutcomeUnattempted
			qr.Marks = scheme.Unattempted
		case isCorrect(q, selected):
			qr.Outcome = OutcomeCorrect
			qr.Marks = scheme.Correct
			res.Correct++
		default:
			qr.Outcome = OutcomeIncorrect
			qr.Marks = scheme.Incorrect
			res.Incorrect++
		}
		if answered {
			sel := selected
			qr.Selected = &sel
		}

		res.Score += qr.Marks
		res.Questions = append(res.Questions, qr)
	}

	res.Unattempted = res.TotalQuestions - (res.Correct + res.Incorrect)
	res.Percentage = Percentage(res.Score, totalMarks)
	return res
}

// Percentage returns score as a percentage of total, or 0 when total is not positive.
func Percentage(score, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return (score / total) * 100
}

func isCorrect(q *models.Question, selected uint) bool {
	correct, ok := q.CorrectOptionID()
	return ok && correct == selected
}
