package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

const defaultRetryBackoff = 50 * time.Millisecond

// retrier повторяет операции хранилища при временных сбоях.
// Ошибки предметной области возвращаются как есть, остальные - в виде PersistenceError.
type retrier struct {
	attempts int
	backoff  time.Duration
}

func newRetrier(retries int) retrier {
	if retries < 0 {
		retries = 0
	}
	return retrier{attempts: retries + 1, backoff: defaultRetryBackoff}
}

func (r retrier) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	attempt := 0
	for attempt < r.attempts {
		attempt++
		err = fn(ctx)
		if err == nil || models.IsDomainError(err) {
			return err
		}
		if !isTransient(err) {
			break
		}
		if attempt == r.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return &models.PersistenceError{Op: op, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
	return &models.PersistenceError{Op: op, Attempts: attempt, Err: err}
}

// isTransient определяет, имеет ли смысл повторить операцию.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization_failure, deadlock_detected
			return true
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // connection exception
			return true
		}
	}
	return false
}

// isUniqueViolation проверяет нарушение уникального индекса с заданным именем.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
