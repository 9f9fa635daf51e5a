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
package scrape

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// knownIndexIDs maps the exchange's index ids to their display names.
var knownIndexIDs = map[int]string{
	4:  "All T&T Index",
	5:  "Composite Index",
	6:  "Cross-Listed Index",
	15: "SME Index",
}

// indexHistoryFrame is where the history table sits on the index page.
const indexHistoryFrame = 1

// indexDateLayout matches the dates in the index history table.
const indexDateLayout = "2 Jan 2006"

// IndexHistory backfills index snapshots from the per-index history pages.
// Cheaper than walking every market-quote page when only index values are
// missing.
type IndexHistory struct {
	deps *Deps
}

// NewIndexHistory builds the index backfill scraper.
func NewIndexHistory(deps *Deps) *IndexHistory {
	return &IndexHistory{deps: deps}
}

// Run fetches the history table for every known index.
func (scraper *IndexHistory) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	var snapshots []data.Row
	for indexID, indexName := range knownIndexIDs {
		indexSnapshots, err := scraper.indexSnapshots(ctx, indexID, indexName)
		if err != nil {
			log.Warn().Err(err).Str("Index", indexName).Msg("skipping index history")
			tally.Count(ItemFailed)
			continue
		}

		snapshots = append(snapshots, indexSnapshots...)
		tally.Count(ItemOk)
	}

	rows, err := scraper.deps.Library.Upsert(ctx, snapshots)
	if err != nil {
		return tally.Summary(scraper.deps, "index_history", start, rows, err), err
	}

	log.Info().Int64("Rows", rows).Msg("index history scraped")
	return tally.Summary(scraper.deps, "index_history", start, rows, nil), nil
}

func (scraper *IndexHistory) indexSnapshots(ctx context.Context, indexID int, indexName string) ([]data.Row, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.indexURL(indexID))
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	frame, err := page.FrameAt(indexHistoryFrame)
	if err != nil {
		return nil, err
	}

	snapshots := make([]data.Row, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		if len(row) < 7 {
			continue
		}

		date, err := normalize.ToDate(row[0], indexDateLayout)
		if err != nil {
			continue
		}

		volume, _ := normalize.ToInt(row[4])
		numTrades, _ := normalize.ToInt(row[6])

		snapshots = append(snapshots, &data.IndexSnapshot{
			IndexName:     indexName,
			Date:          date,
			IndexValue:    normalize.ToDecimal(row[1]),
			IndexChange:   normalize.ToDecimal(row[2]),
			ChangePercent: normalize.ToDecimal(row[3]),
			Volume:        volume,
			ValueTraded:   normalize.ToDecimal(row[5]),
			NumTrades:     numTrades,
		})
	}

	return snapshots, nil
}
