package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Kind classifies a business error so handlers can map it to a response
// without inspecting message text.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION_FAILED"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindOverpayment       Kind = "OVERPAYMENT_REJECTED"
	KindConflict          Kind = "CONFLICT"
)

// Error is a recoverable business error. Infrastructure failures (db down,
// broker unreachable) are not wrapped in Error and surface as plain errors.
type Error struct {
	Kind    Kind
	Message string

	// Fields carries per-field validation detail for KindValidation.
	Fields map[string]string

	// Required names the permission tokens that were missing for KindForbidden.
	Required []string

	// Remaining is the outstanding balance for KindOverpayment.
	Remaining decimal.Decimal

	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// NotFound reports an absent entity. Cross-tenant lookups use the same
// message as genuinely missing entities so existence never leaks.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Validation reports malformed input with per-field detail.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Forbidden reports an authorization denial naming the required permissions.
func Forbidden(required ...string) *Error {
	return &Error{Kind: KindForbidden, Message: "forbidden", Required: required}
}

// InvalidTransition reports an illegal lifecycle change.
func InvalidTransition(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

// Overpayment reports a payment exceeding the order's remaining balance.
func Overpayment(remaining decimal.Decimal) *Error {
	return &Error{
		Kind:      KindOverpayment,
		Message:   "payment exceeds remaining balance",
		Remaining: remaining,
	}
}

// Conflict reports a concurrent-write collision. Always retryable.
func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, err: err}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Status maps an error to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidTransition, KindOverpayment:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON error payload for err.
func Body(err error) map[string]any {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]any{"error": "internal server error"}
	}
	body := map[string]any{"error": e.Message, "code": string(e.Kind)}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	if len(e.Required) > 0 {
		body["required_permissions"] = e.Required
	}
	if e.Kind == KindOverpayment {
		body["remaining"] = e.Remaining.StringFixed(2)
	}
	return body
}
