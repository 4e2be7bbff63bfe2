package validator

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/examprep-service/internal/errors"
	"github.com/SAP-F-2025/examprep-service/internal/models"
)

const maxQuestionsPerMock = 1000

func violation(field, message, rule string, value interface{}) apperrors.ValidationError {
	return *apperrors.NewValidationErrorWithRule(field, message, rule, value)
}

func blueprintRules(bp *models.MockBlueprint) ValidationErrors {
	var errs ValidationErrors

	if len(bp.Items) == 0 {
		errs = append(errs, violation("items", "must contain at least one subject", "blueprint_items", nil))
	}
	for i, item := range bp.Items {
		if item.SubjectID == 0 {
			errs = append(errs, violation(fmt.Sprintf("items[%d].subject_id", i), "is required", "required", item.SubjectID))
		}
		if item.QuestionCount <= 0 {
			errs = append(errs, violation(fmt.Sprintf("items[%d].question_count", i), "must be greater than 0", "gt", item.QuestionCount))
		}
	}
	if total := bp.TotalQuestions(); total > maxQuestionsPerMock {
		errs = append(errs, violation("items", fmt.Sprintf("must not exceed %d questions in total", maxQuestionsPerMock), "blueprint_size", total))
	}

	return append(errs, markingRules(&bp.Marking, "marking")...)
}

func dateRangeRules(r *models.DateRange) ValidationErrors {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return ValidationErrors{violation("date_to", "must not be before date_from", "date_range", r.To)}
	}
	return nil
}

// markingRules: a correct answer must earn marks and a wrong one must not.
func markingRules(m *models.MarkingScheme, prefix string) ValidationErrors {
	var errs ValidationErrors
	if m.Correct <= 0 {
		errs = append(errs, violation(prefix+".correct", "must be greater than 0", "gt", m.Correct))
	}
	if m.Incorrect > 0 {
		errs = append(errs, violation(prefix+".incorrect", "must be zero or negative", "lte", m.Incorrect))
	}
	return errs
}
