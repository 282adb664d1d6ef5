package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueConstraint(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "idx_orders_number"})

	name, ok := pgerr.UniqueConstraint(err)

	assert.True(t, ok)
	assert.Equal(t, "idx_orders_number", name)

	_, ok = pgerr.UniqueConstraint(errors.New("boom"))
	assert.False(t, ok)
}

func TestTranslate(t *testing.T) {
	constraints := map[string]error{"idx_orders_settlement": ports.ErrDuplicateSettlement}

	t.Run("known constraint", func(t *testing.T) {
		err := pgerr.Translate(&pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "idx_orders_settlement"}, constraints)

		assert.ErrorIs(t, err, ports.ErrDuplicateSettlement)
		var pgErr *pgconn.PgError
		assert.ErrorAs(t, err, &pgErr)
	})

	t.Run("unknown constraint is passed through", func(t *testing.T) {
		err := pgerr.Translate(&pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "other"}, constraints)

		assert.NotErrorIs(t, err, ports.ErrDuplicateSettlement)
		assert.NotErrorIs(t, err, ports.ErrTransient)
	})

	t.Run("serialization failure and deadlock are transient", func(t *testing.T) {
		for _, code := range []string{pgerr.SerializationFailure, pgerr.DeadlockDetected} {
			err := pgerr.Translate(&pgconn.PgError{Code: code}, nil)

			assert.ErrorIs(t, err, ports.ErrTransient, code)
		}
	})

	t.Run("other server errors are final", func(t *testing.T) {
		err := pgerr.Translate(&pgconn.PgError{Code: "23502"}, nil)

		assert.NotErrorIs(t, err, ports.ErrTransient)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, pgerr.Translate(nil, constraints))
	})
}
