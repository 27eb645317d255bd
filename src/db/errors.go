package db

import (
	"context"
	"errors"
	"fmt"
	"hms/src/types"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const maxTxAttempts = 3

// ClassifyError translates a storage error into the AppError taxonomy. Errors
// that are already AppErrors pass through untouched.
func ClassifyError(err error, action string) error {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &types.AppError{Kind: types.ERR_CONFLICT, Message: fmt.Sprintf("%s: duplicate value violates %s", action, pgErr.ConstraintName), Err: err}
		case pgForeignKeyViolation:
			return &types.AppError{Kind: types.ERR_VALIDATION, Message: fmt.Sprintf("%s: referenced record does not exist (%s)", action, pgErr.ConstraintName), Err: err}
		case pgNotNullViolation:
			return &types.AppError{Kind: types.ERR_VALIDATION, Message: fmt.Sprintf("%s: missing value for %s", action, pgErr.ColumnName), Err: err}
		case pgSerializationFailure, pgDeadlockDetected:
			return &types.AppError{Kind: types.ERR_CONFLICT, Message: fmt.Sprintf("%s: concurrent update, try again", action), Err: err}
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &types.AppError{Kind: types.ERR_NOT_FOUND, Message: fmt.Sprintf("%s: record not found", action), Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &types.AppError{Kind: types.ERR_CONFLICT, Message: fmt.Sprintf("%s: duplicate value", action), Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &types.AppError{Kind: types.ERR_VALIDATION, Message: fmt.Sprintf("%s: referenced record does not exist", action), Err: err}
	}
	log.Printf("[db] %s failed: %s\n", action, err.Error())
	return types.NewInternal(err, "%s failed", action)
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsRetryable reports whether the transaction that produced err can be
// replayed as a whole.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// RunInTransaction runs fn in a transaction, replaying it when the database
// aborts it with a serialization failure or deadlock.
func RunInTransaction(ctx context.Context, d *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = d.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		log.Printf("[db] transaction aborted (attempt %d/%d): %s\n", attempt, maxTxAttempts, err.Error())
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
	return err
}
