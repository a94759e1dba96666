// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lavanderia/internal/apperr"
	"lavanderia/internal/code"
)

// CounterStore hands out values from the named sequences in the counters
// table. It is the single allocation path for every generated code.
type CounterStore struct {
	db *sql.DB
}

// NewCounterStore returns a new CounterStore.
func NewCounterStore(db *sql.DB) *CounterStore {
	return &CounterStore{db: db}
}

// The UPDATE takes a row lock on the counter, so concurrent transactions
// queue on it and each sees a distinct pre-increment value.
const nextCounterSQL = `
	UPDATE counters SET next_value = next_value + 1
	WHERE name = $1
	RETURNING next_value - 1`

// Next allocates the next value of the named counter on q. When q is a
// transaction the allocation is undone if that transaction rolls back.
// A counter row that does not exist is a NotFound error.
func (s *CounterStore) Next(ctx context.Context, q querier, kind code.Kind) (int64, error) {
	if q == nil {
		q = s.db
	}
	var n int64
	err := q.QueryRowContext(ctx, nextCounterSQL, string(kind)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound(
			fmt.Sprintf("Contador %s no encontrado", kind),
			map[string]string{"counter": string(kind)},
		)
	}
	if err != nil {
		return 0, fmt.Errorf("next counter %s: %w", kind, err)
	}
	return n, nil
}

// NextCode allocates the next value and formats it as a code of kind.
func (s *CounterStore) NextCode(ctx context.Context, q querier, kind code.Kind) (string, error) {
	n, err := s.Next(ctx, q, kind)
	if err != nil {
		return "", err
	}
	return code.Format(kind, n)
}

// Peek returns the value the next allocation would return, without
// allocating it.
func (s *CounterStore) Peek(ctx context.Context, kind code.Kind) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT next_value FROM counters WHERE name = $1`, string(kind)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound(
			fmt.Sprintf("Contador %s no encontrado", kind),
			map[string]string{"counter": string(kind)},
		)
	}
	if err != nil {
		return 0, fmt.Errorf("peek counter %s: %w", kind, err)
	}
	return n, nil
}
