package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is. Every *Error matches exactly one of these through
// its Code.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateOffer    = errors.New("duplicate offer")
	ErrDuplicateRating   = errors.New("duplicate rating")
	ErrInvalidInput      = errors.New("invalid input")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicateAccount  = errors.New("duplicate account")
	ErrPersistence       = errors.New("persistence failure")
)

// Code categorizes lifecycle errors.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeDuplicateOffer    Code = "DUPLICATE_OFFER"
	CodeDuplicateRating   Code = "DUPLICATE_RATING"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeIllegalTransition Code = "ILLEGAL_TRANSITION"
	CodeForbidden         Code = "FORBIDDEN"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeDuplicateAccount  Code = "DUPLICATE_ACCOUNT"
	CodePersistence       Code = "PERSISTENCE_FAILURE"
)

var sentinels = map[Code]error{
	CodeNotFound:          ErrNotFound,
	CodeDuplicateOffer:    ErrDuplicateOffer,
	CodeDuplicateRating:   ErrDuplicateRating,
	CodeInvalidInput:      ErrInvalidInput,
	CodeIllegalTransition: ErrIllegalTransition,
	CodeForbidden:         ErrForbidden,
	CodeUnauthorized:      ErrUnauthorized,
	CodeDuplicateAccount:  ErrDuplicateAccount,
	CodePersistence:       ErrPersistence,
}

// Error is the error type returned by every lifecycle operation.
//
// Message is safe to show to the end user. Entity and ID identify the row the
// error refers to, when there is one.
type Error struct {
	Code    Code
	Message string
	Entity  string
	ID      string
	Err     error
}

func (e *Error) Error() string {
	if e.Entity != "" && e.ID != "" {
		return fmt.Sprintf("%s: %s (%s=%s)", e.Code, e.Message, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches the sentinel for the error's code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that entity id does not exist.
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: entity + " not found", Entity: entity, ID: id}
}

// NotFoundf is NotFound with a custom user-facing message.
func NotFoundf(entity, id, format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...), Entity: entity, ID: id}
}

func DuplicateOffer(requestID, sellerID string) *Error {
	return &Error{
		Code:    CodeDuplicateOffer,
		Message: "seller already submitted an offer for this request",
		Entity:  "request",
		ID:      requestID,
		Err:     fmt.Errorf("seller %s", sellerID),
	}
}

func DuplicateRating(requestID, fromUserID string) *Error {
	return &Error{
		Code:    CodeDuplicateRating,
		Message: "user already rated this transaction",
		Entity:  "request",
		ID:      requestID,
		Err:     fmt.Errorf("rater %s", fromUserID),
	}
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// IllegalTransition reports a state change the lifecycle does not allow.
func IllegalTransition(entity, id string, from, to any) *Error {
	return &Error{
		Code:    CodeIllegalTransition,
		Message: fmt.Sprintf("cannot move %s from %v to %v", entity, from, to),
		Entity:  entity,
		ID:      id,
	}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func DuplicateAccount(email string) *Error {
	return &Error{Code: CodeDuplicateAccount, Message: "email already registered", Entity: "user", ID: email}
}

func Persistence(err error) *Error {
	return &Error{Code: CodePersistence, Message: "failed to persist store", Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps err to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateOffer, CodeDuplicateRating, CodeIllegalTransition, CodeDuplicateAccount:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
