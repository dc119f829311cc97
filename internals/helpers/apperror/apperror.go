// Package apperror holds the typed errors shared by services and handlers.
// Two errors are equal under errors.Is when their codes match.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeNotFound              Code = "NOT_FOUND"
	CodeConflict              Code = "CONFLICT"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeUnavailable           Code = "UNAVAILABLE"
	CodeNoActiveSchoolYear    Code = "NO_ACTIVE_SCHOOL_YEAR"
	CodeClassNotFound         Code = "CLASS_NOT_FOUND"
	CodeCourseNotFound        Code = "COURSE_NOT_FOUND"
	CodeNoHistoricalFee       Code = "NO_HISTORICAL_FEE"
	CodePlanIncomplete        Code = "PLAN_INCOMPLETE"
	CodeAlreadyReconciled     Code = "ALREADY_RECONCILED"
	CodePlanEntryMissing      Code = "PLAN_ENTRY_MISSING"
	CodeFinancialPlanNotReady Code = "FINANCIAL_PLAN_NOT_READY"
	CodeInvalidMonthReference Code = "INVALID_MONTH_REFERENCE"
	CodeInvalidOTP            Code = "INVALID_OTP"
)

type Error struct {
	Code    Code
	Message string
	Status  int
	Fields  map[string][]string
	// Details carries structured context for the caller (e.g. failed months).
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may retry the same request.
func (e *Error) Retryable() bool { return e.Code == CodeUnavailable }

// With returns a copy carrying a different message.
func (e *Error) With(msg string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(msg, args...)
	return &cp
}

// Wrap returns a copy that keeps err as cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func (e *Error) WithDetails(d any) *Error {
	cp := *e
	cp.Details = d
	return &cp
}

func newErr(code Code, status int, msg string) *Error {
	return &Error{Code: code, Status: status, Message: msg}
}

// Sentinels. Use errors.Is(err, apperror.ErrNotFound).
var (
	ErrValidation            = newErr(CodeValidation, http.StatusUnprocessableEntity, "validation failed")
	ErrNotFound              = newErr(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrConflict              = newErr(CodeConflict, http.StatusConflict, "resource already exists")
	ErrUnauthorized          = newErr(CodeUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrForbidden             = newErr(CodeForbidden, http.StatusForbidden, "you are not allowed to access this resource")
	ErrUnavailable           = newErr(CodeUnavailable, http.StatusServiceUnavailable, "store unavailable, retry later")
	ErrNoActiveSchoolYear    = newErr(CodeNoActiveSchoolYear, http.StatusUnprocessableEntity, "center has no current school year")
	ErrClassNotFound         = newErr(CodeClassNotFound, http.StatusUnprocessableEntity, "class not found")
	ErrCourseNotFound        = newErr(CodeCourseNotFound, http.StatusUnprocessableEntity, "course not found for class")
	ErrNoHistoricalFee       = newErr(CodeNoHistoricalFee, http.StatusUnprocessableEntity, "no tuition fee existed at enrollment date")
	ErrPlanIncomplete        = newErr(CodePlanIncomplete, http.StatusServiceUnavailable, "financial plan partially generated")
	ErrAlreadyReconciled     = newErr(CodeAlreadyReconciled, http.StatusConflict, "plan entry already reconciled with another payment")
	ErrPlanEntryMissing      = newErr(CodePlanEntryMissing, http.StatusUnprocessableEntity, "no plan entry for payment reference")
	ErrFinancialPlanNotReady = newErr(CodeFinancialPlanNotReady, http.StatusConflict, "enrollment has no generated financial plan")
	ErrInvalidMonthReference = newErr(CodeInvalidMonthReference, http.StatusUnprocessableEntity, "unknown month reference")
	ErrInvalidOTP            = newErr(CodeInvalidOTP, http.StatusUnauthorized, "invalid or expired code")
)

// Validation builds a 422 error with per-field messages.
func Validation(fields map[string][]string) *Error {
	cp := *ErrValidation
	cp.Fields = fields
	return &cp
}

// From extracts an *Error from err's chain.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
