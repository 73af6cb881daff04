package onboarding

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a domain error for callers and transport mapping
type ErrorKind int

const (
	// KindPrecondition is a caller error; nothing was mutated
	KindPrecondition ErrorKind = iota
	// KindInvariant is an internal consistency failure; the operation aborted
	KindInvariant
	// KindCollaborator means the core change committed but a side effect failed
	KindCollaborator
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindInvariant:
		return "invariant"
	case KindCollaborator:
		return "collaborator"
	}
	return "unknown"
}

// Code is a stable machine-readable error identifier
type Code string

const (
	CodeEmployeeNotFound        Code = "EMPLOYEE_NOT_FOUND"
	CodeTemplateNotFound        Code = "TEMPLATE_NOT_FOUND"
	CodeProgressNotFound        Code = "PROGRESS_NOT_FOUND"
	CodeStepNotFound            Code = "STEP_NOT_FOUND"
	CodeNoTemplateFound         Code = "NO_TEMPLATE_FOUND"
	CodeOnboardingAlreadyActive Code = "ONBOARDING_ALREADY_ACTIVE"
	CodeOnboardingNotActive     Code = "ONBOARDING_NOT_ACTIVE"
	CodeStepNotSkippable        Code = "STEP_NOT_SKIPPABLE"
	CodeStepBlocked             Code = "STEP_BLOCKED"
	CodeDependencyNotMet        Code = "DEPENDENCY_NOT_MET"
	CodeInvalidTransition       Code = "INVALID_TRANSITION"
	CodeUnknownAction           Code = "UNKNOWN_ACTION"
	CodeDuplicateTemplateCode   Code = "DUPLICATE_TEMPLATE_CODE"
	CodeDuplicateStepCode       Code = "DUPLICATE_STEP_CODE"
	CodeInvalidTemplate         Code = "INVALID_TEMPLATE"
	CodeInvalidStepDependency   Code = "INVALID_STEP_DEPENDENCY"
	CodeDependencyCycle         Code = "DEPENDENCY_CYCLE"
	CodeMetricsInvariant        Code = "METRICS_INVARIANT"
	CodeMissingStepDefinition   Code = "MISSING_STEP_DEFINITION"
	CodeCompletionEffectFailed  Code = "COMPLETION_EFFECT_FAILED"
	CodeDocumentDispatchFailed  Code = "DOCUMENT_DISPATCH_FAILED"
)

// Error is the domain error returned by the onboarding engine
type Error struct {
	Code    Code
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrEmployeeNotFound        = &Error{Code: CodeEmployeeNotFound}
	ErrTemplateNotFound        = &Error{Code: CodeTemplateNotFound}
	ErrProgressNotFound        = &Error{Code: CodeProgressNotFound}
	ErrStepNotFound            = &Error{Code: CodeStepNotFound}
	ErrNoTemplateFound         = &Error{Code: CodeNoTemplateFound}
	ErrOnboardingAlreadyActive = &Error{Code: CodeOnboardingAlreadyActive}
	ErrOnboardingNotActive     = &Error{Code: CodeOnboardingNotActive}
	ErrStepNotSkippable        = &Error{Code: CodeStepNotSkippable}
	ErrStepBlocked             = &Error{Code: CodeStepBlocked}
	ErrDependencyNotMet        = &Error{Code: CodeDependencyNotMet}
	ErrInvalidTransition       = &Error{Code: CodeInvalidTransition}
	ErrUnknownAction           = &Error{Code: CodeUnknownAction}
	ErrDuplicateTemplateCode   = &Error{Code: CodeDuplicateTemplateCode}
	ErrDuplicateStepCode       = &Error{Code: CodeDuplicateStepCode}
	ErrInvalidTemplate         = &Error{Code: CodeInvalidTemplate}
	ErrInvalidStepDependency   = &Error{Code: CodeInvalidStepDependency}
	ErrDependencyCycle         = &Error{Code: CodeDependencyCycle}
	ErrMetricsInvariant        = &Error{Code: CodeMetricsInvariant}
	ErrMissingStepDefinition   = &Error{Code: CodeMissingStepDefinition}
	ErrCompletionEffectFailed  = &Error{Code: CodeCompletionEffectFailed}
	ErrDocumentDispatchFailed  = &Error{Code: CodeDocumentDispatchFailed}
)

func preconditionf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func invariantf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

func collaborator(code Code, message string, err error) *Error {
	return &Error{Code: code, Kind: KindCollaborator, Message: message, Err: err}
}

// HTTPStatus maps a domain error to a response status code
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvariant:
		return http.StatusInternalServerError
	case KindCollaborator:
		return http.StatusBadGateway
	}
	switch e.Code {
	case CodeEmployeeNotFound, CodeTemplateNotFound, CodeProgressNotFound, CodeStepNotFound, CodeNoTemplateFound:
		return http.StatusNotFound
	case CodeOnboardingAlreadyActive, CodeOnboardingNotActive, CodeDuplicateTemplateCode,
		CodeStepBlocked, CodeDependencyNotMet, CodeInvalidTransition:
		return http.StatusConflict
	case CodeStepNotSkippable, CodeInvalidTemplate, CodeDuplicateStepCode, CodeInvalidStepDependency:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
