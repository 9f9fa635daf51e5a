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
package data

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state of one scraper stage.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// RunSummary is the bookkeeping record for one scraper execution within a
// pipeline run.
type RunSummary struct {
	RunID       uuid.UUID `db:"run_id"`
	Stage       string    `db:"stage"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	RowsWritten int64     `db:"rows_written"`
	NumSkipped  int       `db:"num_skipped"`
	NumFailed   int       `db:"num_failed"`
	Status      RunStatus `db:"status"`
}

func (summary *RunSummary) Table() string { return "scrape_runs" }

func (summary *RunSummary) KeyColumns() []string { return []string{"run_id", "stage"} }

func (summary *RunSummary) Columns() []string {
	return []string{"run_id", "stage", "start_time", "end_time", "rows_written",
		"num_skipped", "num_failed", "status"}
}

func (summary *RunSummary) Values() []any {
	return []any{summary.RunID, summary.Stage, summary.StartTime, summary.EndTime,
		summary.RowsWritten, summary.NumSkipped, summary.NumFailed, string(summary.Status)}
}
