// Package pgerr classifies Postgres errors returned through GORM so the
// repositories can translate them into port errors.
package pgerr

import (
	"errors"
	"fmt"

	"campuseats/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	AdminShutdown        = "57P01"
)

// UniqueConstraint returns the name of the violated unique constraint or
// index, if err is a unique violation.
func UniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsTransient reports errors that are safe to retry: serialization failures,
// deadlocks and connection losses before the statement reached the server.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailure, DeadlockDetected, AdminShutdown:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// Translate wraps transient errors with ports.ErrTransient and maps unique
// violations through constraints. Other errors are returned unchanged.
func Translate(err error, constraints map[string]error) error {
	if err == nil {
		return nil
	}
	if name, ok := UniqueConstraint(err); ok {
		if mapped, known := constraints[name]; known {
			return fmt.Errorf("%w: %w", mapped, err)
		}
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", ports.ErrTransient, err)
	}
	return err
}
