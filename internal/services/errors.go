package services

import (
	"errors"
	"fmt"

	apperrors "github.com/quizforge/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizAccessDenied   = errors.New("access denied to quiz")
	ErrQuizNotEditable    = errors.New("quiz cannot be edited in current status")
	ErrQuizNotDeletable   = errors.New("quiz cannot be deleted - has submitted results")
	ErrQuizInvalidStatus  = errors.New("invalid quiz status transition")
	ErrQuizDuplicateTitle = errors.New("quiz title already exists for this user")
	ErrQuizNotActive      = errors.New("quiz is not active")
	ErrQuizEmpty          = errors.New("quiz has no questions")

	// Question specific errors
	ErrQuestionNotFound      = errors.New("question not found")
	ErrQuestionInvalidType   = errors.New("invalid question type")
	ErrQuestionInvalidKey    = errors.New("invalid answer key for question type")
	ErrQuestionNotInQuiz     = errors.New("question does not belong to quiz")
	ErrQuestionQuizPublished = errors.New("questions cannot be modified after quiz is published")

	// Subject specific errors
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrSubjectDuplicateName = errors.New("subject name already exists")
	ErrSubjectNotDeletable  = errors.New("subject cannot be deleted - has quizzes")

	// Submission specific errors
	ErrQuizAlreadyTaken   = errors.New("quiz already taken - only one graded attempt is allowed")
	ErrDuplicateAnswer    = errors.New("submission contains multiple answers for the same question")
	ErrUnknownQuestion    = errors.New("submission references a question not in this quiz")
	ErrResultNotFound     = errors.New("result not found")
	ErrSubmissionRejected = errors.New("submission rejected")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrUserDuplicateEmail      = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrUserInactive            = errors.New("user account is deactivated")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
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

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrInsufficientPermissions)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuizNotDeletable) ||
		errors.Is(err, ErrQuizDuplicateTitle) ||
		errors.Is(err, ErrSubjectDuplicateName) ||
		errors.Is(err, ErrSubjectNotDeletable) ||
		errors.Is(err, ErrUserDuplicateEmail) ||
		errors.Is(err, ErrQuizAlreadyTaken)
}
