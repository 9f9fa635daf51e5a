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

// Package scrape holds the per-data-kind scrapers. Every scraper shares the
// same shape: plan the work units, fetch, extract tables, normalize cells,
// upsert. Per-item failures are logged and skipped; the scraper continues
// with the next item and reports a structured summary.
package scrape

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/fetch"
	"github.com/trinistats/ttsetl/fx"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/store"
)

// Deps bundles the collaborators every scraper receives at construction.
// Configuration is an explicit record, not package globals.
type Deps struct {
	Settings *config.Settings
	Client   *fetch.Client
	Library  *store.Library
	Currency *normalize.CurrencyOverrides
	Rates    *fx.Rates
	RunID    uuid.UUID
}

// Outcome classifies per-item results so scrapers can report a structured
// summary instead of using exceptions for skip semantics.
type Outcome int

const (
	ItemOk Outcome = iota
	ItemSkipped
	ItemFailed
)

// Tally accumulates item outcomes for a scraper's RunSummary.
type Tally struct {
	Ok      int
	Skipped int
	Failed  int
}

// Count records one outcome.
func (tally *Tally) Count(outcome Outcome) {
	switch outcome {
	case ItemOk:
		tally.Ok++
	case ItemSkipped:
		tally.Skipped++
	case ItemFailed:
		tally.Failed++
	}
}

// Summary builds a RunSummary row for this scraper stage.
func (tally *Tally) Summary(deps *Deps, stage string, start time.Time, rows int64, err error) *data.RunSummary {
	status := data.RunSuccess
	if err != nil {
		status = data.RunFailed
	}

	return &data.RunSummary{
		RunID:       deps.RunID,
		Stage:       stage,
		StartTime:   start,
		EndTime:     time.Now(),
		RowsWritten: rows,
		NumSkipped:  tally.Skipped,
		NumFailed:   tally.Failed,
		Status:      status,
	}
}

// URL builders for the upstream endpoints.

func (deps *Deps) listingURL() string {
	return deps.Settings.BaseURL + "/listed-securities/"
}

func (deps *Deps) symbolURL(symbol string) string {
	return fmt.Sprintf("%s/manage-stock/%s/", deps.Settings.BaseURL, url.PathEscape(symbol))
}

func (deps *Deps) quoteURL(date time.Time) string {
	return fmt.Sprintf("%s/market-quote/?TradeDate=%s", deps.Settings.BaseURL, date.Format("2006-01-02"))
}

func (deps *Deps) indexURL(indexID int) string {
	return fmt.Sprintf("%s/indices/?indexId=%d", deps.Settings.BaseURL, indexID)
}

func (deps *Deps) newsURL(newsID int64, category int, from, to time.Time, page int) string {
	return fmt.Sprintf("%s/news/?symbol=%d&category=%d&date=%s&date_to=%s&page=%d",
		deps.Settings.BaseURL, newsID, category,
		from.Format("2006-01-02"), to.Format("2006-01-02"), page)
}
