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
	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// dividendDateLayout matches the "02 Jan 2006" record dates on the symbol
// pages.
const dividendDateLayout = "2 Jan 2006"

// dividendFrameIndex is where the dividend table sits on the symbol page.
const dividendFrameIndex = 1

// Dividends scrapes each symbol's dividend history table.
type Dividends struct {
	deps         *Deps
	percentOfPar map[string]bool
}

// NewDividends builds the dividends scraper.
func NewDividends(deps *Deps) *Dividends {
	percentOfPar := make(map[string]bool, len(deps.Settings.PercentOfParSymbols))
	for _, symbol := range deps.Settings.PercentOfParSymbols {
		percentOfPar[symbol] = true
	}

	return &Dividends{deps: deps, percentOfPar: percentOfPar}
}

// Run walks every known symbol's dividend table and upserts the events.
func (scraper *Dividends) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	symbols, err := scraper.deps.Library.Symbols(ctx)
	if err != nil {
		return tally.Summary(scraper.deps, "dividends", start, 0, err), err
	}

	var events []data.Row
	for _, symbol := range symbols {
		symbolEvents, err := scraper.symbolDividends(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("skipping symbol dividends")
			tally.Count(ItemFailed)
			continue
		}

		events = append(events, symbolEvents...)
		tally.Count(ItemOk)
	}

	rows, err := scraper.deps.Library.Upsert(ctx, events)
	if err != nil {
		return tally.Summary(scraper.deps, "dividends", start, rows, err), err
	}

	log.Info().Int64("Rows", rows).Msg("dividends scraped")
	return tally.Summary(scraper.deps, "dividends", start, rows, nil), nil
}

// symbolDividends extracts the dividend frame for one symbol.
func (scraper *Dividends) symbolDividends(ctx context.Context, symbol string) ([]data.Row, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.symbolURL(symbol))
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	frame, err := page.FrameAt(dividendFrameIndex)
	if err != nil {
		return nil, err
	}

	events := make([]data.Row, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		event, outcome := scraper.parseRow(symbol, row)
		if outcome == ItemOk {
			events = append(events, event)
		}
	}

	return events, nil
}

// parseRow coerces one dividend table row. The first cell is the record
// date; the second the amount; the third, when present, the currency.
func (scraper *Dividends) parseRow(symbol string, row []string) (*data.DividendEvent, Outcome) {
	if len(row) < 2 {
		return nil, ItemSkipped
	}

	recordDate, err := normalize.ToDate(row[0], dividendDateLayout)
	if err != nil {
		log.Warn().Err(err).Str("Symbol", symbol).Str("Cell", row[0]).Msg("unparseable dividend record date, skipping row")
		return nil, ItemSkipped
	}

	amount := normalize.ToDecimal(row[1])
	if !amount.Valid {
		return nil, ItemSkipped
	}

	value := amount.Decimal
	if scraper.percentOfPar[symbol] {
		// This issuer declares a percentage of par, not a cash amount.
		par := decimal.NewFromFloat(scraper.deps.Settings.ParValue)
		value = par.Mul(value).Div(decimal.NewFromInt(100))
	}

	currency := ""
	if len(row) >= 3 {
		currency = normalize.EnDashToNull(row[2])
	}

	if currency == "" {
		currency = scraper.deps.Currency.DividendCurrency(symbol)
		if currency == "TTD" {
			log.Warn().Str("Symbol", symbol).Str("RecordDate", recordDate.Format("2006-01-02")).
				Msg("dividend currency missing, coercing to TTD")
		}
	}

	return &data.DividendEvent{
		Symbol:     symbol,
		RecordDate: recordDate,
		Amount:     value,
		Currency:   currency,
	}, ItemOk
}
