// Package errors holds the field-level validation error shared by the
// validator and the service layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + errs[0].Field + " " + errs[0].Message
	default:
		return fmt.Sprintf("validation failed: %d field errors", len(errs))
	}
}

// Fields lists the offending field names in order.
func (errs ValidationErrors) Fields() []string {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	return fields
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value, Rule: rule}
}

// tagMessages maps validator tags to messages; %s receives the tag parameter.
var tagMessages = map[string]string{
	"required":      "is required",
	"required_with": "is required when %s is set",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"len":           "must be exactly %s characters",
	"oneof":         "must be one of: %s",
	"gt":            "must be greater than %s",
	"gte":           "must be at least %s",
	"lte":           "must be at most %s",
	"dive":          "contains an invalid element",
	"exam_kind":     "must be a valid exam type (mock, practice)",
}

func describe(fe validator.FieldError) string {
	tmpl, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("fails rule %q", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}

// ToValidationErrors flattens go-playground field errors found anywhere in
// err's chain. It returns nil when there are none.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: describe(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}
