// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has no dependencies
// outside the standard library and golang.org/x/text.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds. Every error returned by the domain and application layers
// matches exactly one of these with errors.Is(), and the HTTP layer maps them
// to status codes.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "question", "credential", "auth"
	Op      string // Operation that failed, e.g., "Accept", "Edit"
	Kind    error  // Base error kind for errors.Is() checking
	Message string // Human-readable message, safe to show to API clients
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Invalid is shorthand for a validation failure in the given domain.
func Invalid(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrInvalidInput, message)
}

// Profile domain errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrUsernameTaken   = NewDomainError("profile", "Register", ErrConflict, "username already taken")
	ErrWeakPassword    = NewDomainError("profile", "Register", ErrInvalidInput, "password must have at least 8 characters")
	ErrInvalidUsername = NewDomainError("profile", "Validate", ErrInvalidInput, "username must be 3-150 letters, digits or @.+-_")
	ErrInvalidEmail    = NewDomainError("profile", "Validate", ErrInvalidInput, "invalid email address")
	ErrNegativeScore   = NewDomainError("profile", "Validate", ErrInvalidInput, "reputation score cannot be negative")
)

// Question domain errors
var (
	ErrQuestionNotFound    = NewDomainError("question", "Find", ErrNotFound, "question not found")
	ErrQuestionUnpublished = NewDomainError("question", "Find", ErrNotFound, "question not found")
	ErrEmptyTitle          = NewDomainError("question", "Validate", ErrInvalidInput, "title is required")
	ErrTitleTooLong        = NewDomainError("question", "Validate", ErrInvalidInput, "title must have at most 255 characters")
	ErrEmptyContent        = NewDomainError("question", "Validate", ErrInvalidInput, "content is required")
)

// Answer domain errors
var (
	ErrAnswerNotFound        = NewDomainError("answer", "Find", ErrNotFound, "answer not found")
	ErrAnotherAnswerAccepted = NewDomainError("answer", "Accept", ErrConflict, "question already has an accepted answer")
	ErrQuestionSolutioned    = NewDomainError("answer", "Submit", ErrConflict, "question is already solutioned")
)

// Article domain errors
var (
	ErrArticleNotFound = NewDomainError("article", "Find", ErrNotFound, "article not found")
)

// Credential domain errors
var (
	ErrCredentialNotFound    = NewDomainError("credential", "Find", ErrNotFound, "credential not found")
	ErrCredentialDuplicate   = NewDomainError("credential", "Create", ErrConflict, "credential for this role and institution already exists")
	ErrCredentialVerified    = NewDomainError("credential", "Edit", ErrConflict, "verified credentials cannot be edited")
	ErrStartDateInFuture     = NewDomainError("credential", "Validate", ErrInvalidInput, "start date cannot be in the future")
	ErrStartAfterEnd         = NewDomainError("credential", "Validate", ErrInvalidInput, "start date cannot be after end date")
	ErrUnknownCredentialType = NewDomainError("credential", "Validate", ErrInvalidInput, "type must be one of PRO, GRA")
	ErrUnknownExperience     = NewDomainError("credential", "Validate", ErrInvalidInput, "experience must be one of JR, PL, SR")
)

// Technology domain errors
var (
	ErrTechnologyNotFound = NewDomainError("technology", "Find", ErrNotFound, "technology not found")
	ErrTechnologyExists   = NewDomainError("technology", "Create", ErrConflict, "technology with this name or slug already exists")
	ErrInvalidColor       = NewDomainError("technology", "Validate", ErrInvalidInput, "color must be a hex value like #5e6e7d")
)

// Authentication errors
var (
	ErrInvalidCredentials = NewDomainError("auth", "Login", ErrUnauthorized, "no active account found with the given credentials")
	ErrTokenInvalid       = NewDomainError("auth", "Parse", ErrUnauthorized, "token is invalid or expired")
	ErrTokenBlacklisted   = NewDomainError("auth", "Parse", ErrUnauthorized, "token is blacklisted")
	ErrTokenWrongType     = NewDomainError("auth", "Parse", ErrUnauthorized, "token has wrong type")
	ErrAuthRequired       = NewDomainError("auth", "Authorize", ErrUnauthorized, "authentication credentials were not provided")
	ErrNotOwner           = NewDomainError("auth", "Authorize", ErrForbidden, "you do not have permission to perform this action")
	ErrAdminRequired      = NewDomainError("auth", "Authorize", ErrForbidden, "administrator privileges required")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// PublicMessage returns the message of the outermost DomainError in the chain,
// or an empty string when err carries none.
func PublicMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
