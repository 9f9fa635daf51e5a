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

// Package plan enumerates the trading dates the store is missing. Holiday
// calendars are out of scope: weekends are excluded here and holidays are
// tolerated downstream by the daily summary scraper's valid-trading-day
// check.
package plan

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/store"
)

// Planner computes date gaps against the historical indices table.
type Planner struct {
	Library *store.Library
}

// MissingDates returns the weekdays in [start, today) that have no
// historical-indices row, in ascending order.
func (planner *Planner) MissingDates(ctx context.Context, start time.Time) ([]time.Time, error) {
	existing, err := planner.Library.IndexDates(ctx, start)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	missing := gaps(start, today, existing)

	log.Info().Int("NumMissing", len(missing)).Str("Start", start.Format("2006-01-02")).Msg("computed date gaps")
	return missing, nil
}

// gaps enumerates the weekdays in [start, end) absent from existing.
func gaps(start, end time.Time, existing map[string]bool) []time.Time {
	var missing []time.Time

	for date := start; date.Before(end); date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		if existing[date.Format("2006-01-02")] {
			continue
		}

		missing = append(missing, date)
	}

	return missing
}

// Shard splits dates into n contiguous sublists of near-equal size. Fewer
// sublists come back when there are fewer dates than shards.
func Shard(dates []time.Time, n int) [][]time.Time {
	if n < 1 {
		n = 1
	}

	if len(dates) < n {
		n = len(dates)
	}

	if n == 0 {
		return nil
	}

	shards := make([][]time.Time, 0, n)
	size := len(dates) / n
	remainder := len(dates) % n

	cursor := 0
	for idx := 0; idx < n; idx++ {
		length := size
		if idx < remainder {
			length++
		}
		shards = append(shards, dates[cursor:cursor+length])
		cursor += length
	}

	return shards
}
