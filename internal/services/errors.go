package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/examprep-service/internal/errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")

	ErrExamNotFound    = errors.New("exam not found")
	ErrInvalidExamKind = errors.New("invalid exam type")
	ErrAttemptNotFound = errors.New("attempt not found")

	ErrBlueprintNotFound    = errors.New("blueprint not found")
	ErrGenerationInProgress = errors.New("mock generation already in progress")
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError names the resource and action a known caller was refused.
// It matches ErrForbidden under errors.Is.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (pe *PermissionError) Error() string {
	if pe.ResourceID == 0 {
		return fmt.Sprintf("user %s cannot %s %s: %s", pe.UserID, pe.Action, pe.Resource, pe.Reason)
	}
	return fmt.Sprintf("user %s cannot %s %s %d: %s", pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error { return ErrForbidden }

func matchesAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool {
	return matchesAny(err, ErrExamNotFound, ErrAttemptNotFound, ErrBlueprintNotFound)
}

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsValidation is true for field errors and for an unknown exam type.
func IsValidation(err error) bool {
	var fieldErrs apperrors.ValidationErrors
	return errors.As(err, &fieldErrs) || errors.Is(err, ErrInvalidExamKind)
}

func IsConflict(err error) bool { return errors.Is(err, ErrGenerationInProgress) }
