package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a failure so callers can decide how to retry.
type Code string

const (
	CodeManifestParse   Code = "manifest_parse"
	CodeSchema          Code = "schema"
	CodeNotFound        Code = "not_found"
	CodeInvalidBook     Code = "invalid_book"
	CodeUnknownBook     Code = "unknown_book"
	CodePersistence     Code = "persistence"
	CodeInvalidArgument Code = "invalid_argument"
	CodeInternal        Code = "internal"
)

// Error is the canonical error carried across package boundaries.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func Newf(code Code, op, format string, args ...any) error {
	return New(code, op, fmt.Sprintf(format, args...), nil)
}

// Wrap annotates err with code. An existing *Error is returned untouched.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return New(code, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return ""
	}
	return appErr.Code
}

// MessageOf returns the human readable part of err without op or code.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeManifestParse, CodeSchema, CodeInvalidBook, CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound, CodeUnknownBook:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
