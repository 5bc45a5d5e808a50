package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/response-validator/internal/platform/apperr"
)

// Class is the storage failure family, used for metrics and logs. Every
// class surfaces to callers as an apperr.CodePersistence error.
type Class string

const (
	ClassConflict     Class = "conflict"
	ClassPrecondition Class = "precondition_failed"
	ClassRetryable    Class = "retryable"
	ClassNotFound     Class = "not_found"
	ClassInternal     Class = "internal"
)

// Classify maps infrastructure failures into a storage failure class.
func Classify(err error) Class {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ClassNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ClassConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ClassPrecondition
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return ClassConflict // unique_violation
		case "23503":
			return ClassPrecondition // foreign_key_violation
		case "40001", "40P01", "55P03":
			return ClassRetryable // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "already exists"):
		return ClassConflict
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return ClassRetryable
	default:
		return ClassInternal
	}
}

// MapError turns a storage failure into a persistence error. Errors that
// already carry an apperr code pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.New(apperr.CodePersistence, op, string(Classify(err))+": "+err.Error(), err)
}
