// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
)

// maxAttempts bounds upsert retries: five retries after the first failure,
// then the stage fails.
const maxAttempts = 6

// ErrMixedRows is returned when one Upsert call receives rows bound for
// different tables.
var ErrMixedRows = errors.New("store: upsert rows must share one table")

// FatalError wraps a database error that retrying cannot fix (schema
// mismatch, constraint violation).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("store: fatal database error: %s", e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }

// Upsert writes a homogeneous batch in a single transaction, matching on
// the rows' key columns and overwriting all non-key columns on conflict.
// Transient failures (deadlock, serialization, connection loss) are retried
// with a one-to-two second backoff. Returns rows affected.
func (myLibrary *Library) Upsert(ctx context.Context, rows []data.Row) (int64, error) {
	return myLibrary.upsertRetry(ctx, func(ctx context.Context, tx pgx.Tx) (int64, error) {
		return upsertBatch(ctx, tx, rows)
	})
}

// UpsertGroups writes several homogeneous batches in one transaction so
// that readers see all of them or none. Used by the daily summary scraper
// to keep the index snapshots and share rows for a date atomic.
func (myLibrary *Library) UpsertGroups(ctx context.Context, groups ...[]data.Row) (int64, error) {
	return myLibrary.upsertRetry(ctx, func(ctx context.Context, tx pgx.Tx) (int64, error) {
		var affected int64
		for _, rows := range groups {
			n, err := upsertBatch(ctx, tx, rows)
			if err != nil {
				return 0, err
			}
			affected += n
		}
		return affected, nil
	})
}

func (myLibrary *Library) upsertRetry(ctx context.Context, work func(context.Context, pgx.Tx) (int64, error)) (int64, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		affected, err := myLibrary.upsertOnce(ctx, work)
		if err == nil {
			return affected, nil
		}

		if !Transient(err) {
			return 0, &FatalError{Err: err}
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		backoff := time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		log.Warn().Err(err).Int("Attempt", attempt).Dur("Backoff", backoff).Msg("transient database error, retrying upsert")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	return 0, fmt.Errorf("store: upsert failed after %d attempts: %w", maxAttempts, lastErr)
}

func (myLibrary *Library) upsertOnce(ctx context.Context, work func(context.Context, pgx.Tx) (int64, error)) (int64, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := work(ctx, tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return affected, nil
}

func upsertBatch(ctx context.Context, tx pgx.Tx, rows []data.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	first := rows[0]
	sql := upsertSQL(first)

	var affected int64
	for _, row := range rows {
		if row.Table() != first.Table() {
			return 0, ErrMixedRows
		}

		tag, err := tx.Exec(ctx, sql, row.Values()...)
		if err != nil {
			return 0, err
		}
		affected += tag.RowsAffected()
	}

	return affected, nil
}

// upsertSQL builds the INSERT ... ON CONFLICT statement for a row type.
func upsertSQL(row data.Row) string {
	columns := row.Columns()
	keys := row.KeyColumns()

	keySet := make(map[string]bool, len(keys))
	for _, key := range keys {
		keySet[key] = true
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	var updates []string

	for idx, column := range columns {
		placeholders[idx] = fmt.Sprintf("$%d", idx+1)
		quoted[idx] = fmt.Sprintf("%q", column)
		if !keySet[column] {
			updates = append(updates, fmt.Sprintf("%q = EXCLUDED.%q", column, column))
		}
	}

	quotedKeys := make([]string, len(keys))
	for idx, key := range keys {
		quotedKeys[idx] = fmt.Sprintf("%q", key)
	}

	if len(updates) == 0 {
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING;`,
			row.Table(), strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
			strings.Join(quotedKeys, ", "))
	}

	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s;`,
		row.Table(), strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
		strings.Join(quotedKeys, ", "), strings.Join(updates, ", "))
}

// Transient reports whether the error is worth retrying: deadlocks,
// serialization failures, lock timeouts and connection-level failures.
func Transient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.DeadlockDetected,
			pgerrcode.SerializationFailure,
			pgerrcode.LockNotAvailable,
			pgerrcode.ConnectionException,
			pgerrcode.ConnectionFailure,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.AdminShutdown,
			pgerrcode.CannotConnectNow:
			return true
		}
		return false
	}

	return pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded)
}
