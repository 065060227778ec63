package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes that mean "run the transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// ErrRetriesExhausted wraps the last transient error once Transact gives up.
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// Transact runs fn inside a transaction and re-runs it when the database
// reports a serialization failure or deadlock, up to maxRetries extra attempts.
func Transact(ctx context.Context, db *gorm.DB, maxRetries int, fn func(tx *gorm.DB) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
	return errors.Join(ErrRetriesExhausted, err)
}

// IsRetryable reports whether err is a transient concurrency failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate "+sqlStateSerializationFailure) ||
		strings.Contains(msg, "sqlstate "+strings.ToLower(sqlStateDeadlockDetected)) ||
		strings.Contains(msg, "database is locked")
}
