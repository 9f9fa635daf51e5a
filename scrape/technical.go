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
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// technicalFrameIndex is where the technical table sits on the symbol page.
const technicalFrameIndex = 0

// Technical scrapes the upstream-published technical cells for each symbol.
// SMA, beta, ADTV and the 52-week low are computed later from stored
// history; this stage only captures what the site already publishes.
type Technical struct {
	deps *Deps
}

// NewTechnical builds the technical-source scraper.
func NewTechnical(deps *Deps) *Technical {
	return &Technical{deps: deps}
}

// Run reads each symbol page's technical frame and upserts the scraped
// fields.
func (scraper *Technical) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	symbols, err := scraper.deps.Library.Symbols(ctx)
	if err != nil {
		return tally.Summary(scraper.deps, "technical", start, 0, err), err
	}

	var summaries []data.Row
	for _, symbol := range symbols {
		summary, err := scraper.symbolTechnical(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("skipping symbol technicals")
			tally.Count(ItemFailed)
			continue
		}

		summaries = append(summaries, summary)
		tally.Count(ItemOk)
	}

	rows, err := scraper.deps.Library.Upsert(ctx, summaries)
	if err != nil {
		return tally.Summary(scraper.deps, "technical", start, rows, err), err
	}

	log.Info().Int64("Rows", rows).Msg("technical source scraped")
	return tally.Summary(scraper.deps, "technical", start, rows, nil), nil
}

func (scraper *Technical) symbolTechnical(ctx context.Context, symbol string) (*data.TechnicalSummary, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.symbolURL(symbol))
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	frame, err := page.FrameAt(technicalFrameIndex)
	if err != nil {
		return nil, err
	}

	return &data.TechnicalSummary{
		Symbol:    symbol,
		LastClose: frameValue(frame, "Last Sale Price", "Closing Price"),
		High52W:   frameValue(frame, "52 Week High"),
		WTD:       frameValue(frame, "WTD"),
		MTD:       frameValue(frame, "MTD"),
		YTD:       frameValue(frame, "YTD"),
	}, nil
}

// frameValue finds the first row labeled with any of the given labels and
// coerces the cell that follows it.
func frameValue(frame *tabular.Frame, labels ...string) decimal.NullDecimal {
	for _, row := range frame.Rows {
		if len(row) < 2 {
			continue
		}

		for _, label := range labels {
			if strings.Contains(strings.ToLower(row[0]), strings.ToLower(label)) {
				return normalize.ToDecimal(row[1])
			}
		}
	}

	return decimal.NullDecimal{}
}
