// Package validator checks request DTOs with struct tags and domain models
// with rules registered per type.
package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/examprep-service/internal/errors"
	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/go-playground/validator/v10"
)

type ValidationErrors = apperrors.ValidationErrors

// RuleFunc checks invariants that span several fields of one model.
type RuleFunc func(v interface{}) ValidationErrors

type Validator struct {
	tags  *validator.Validate
	rules map[reflect.Type]RuleFunc
}

func New() *Validator {
	v := &Validator{
		tags:  validator.New(),
		rules: make(map[reflect.Type]RuleFunc),
	}

	v.tags.RegisterTagNameFunc(jsonFieldName)
	_ = v.tags.RegisterValidation("exam_kind", func(fl validator.FieldLevel) bool {
		return models.ExamKind(fl.Field().String()).Valid()
	})

	v.Register(&models.MockBlueprint{}, func(x interface{}) ValidationErrors {
		return blueprintRules(x.(*models.MockBlueprint))
	})
	v.Register(&models.DateRange{}, func(x interface{}) ValidationErrors {
		return dateRangeRules(x.(*models.DateRange))
	})
	return v
}

// Register installs fn for values with the same dynamic type as sample.
func (v *Validator) Register(sample interface{}, fn RuleFunc) {
	v.rules[reflect.TypeOf(sample)] = fn
}

// Tags runs struct tag validation. Field failures come back as ValidationErrors.
func (v *Validator) Tags(s interface{}) error {
	err := v.tags.Struct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Rules runs the rule registered for the type of s, if any.
func (v *Validator) Rules(s interface{}) ValidationErrors {
	fn, ok := v.rules[reflect.TypeOf(s)]
	if !ok {
		return nil
	}
	return fn(s)
}

// Validate runs tags first and rules only when the tags pass.
func (v *Validator) Validate(s interface{}) error {
	if err := v.Tags(s); err != nil {
		return err
	}
	if errs := v.Rules(s); len(errs) > 0 {
		return errs
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
