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
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// tickerPrefixPattern matches the scrolling ticker's
// "Trade Data for 26 Apr 2021 @ 10:06 AM:" prefix, capturing the date.
var tickerPrefixPattern = regexp.MustCompile(`^\s*Trade Data for\s+(\d{1,2} \w{3} \d{4})(?:\s*@\s*[\d:]+\s*[AP]M)?\s*:\s*`)

// tickerBarPattern captures one "SYMBOL  Vol N  $P (Δ)" segment.
var tickerBarPattern = regexp.MustCompile(`^([A-Z0-9]+)\s+Vol\s+([\d,]+)\s+\$([\d,.]+)\s+\(([-\d.,]+)\)`)

// Intraday synthesizes minimal daily rows from the main page's scrolling
// ticker when today's summary page has not yet been published.
type Intraday struct {
	deps *Deps
}

// NewIntraday builds the intraday fallback scraper.
func NewIntraday(deps *Deps) *Intraday {
	return &Intraday{deps: deps}
}

// Run fetches the main page and writes today's ticker trades. A marquee
// dated other than today is discarded wholesale.
func (scraper *Intraday) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	body, err := scraper.deps.Client.Text(ctx, scraper.deps.Settings.BaseURL+"/")
	if err != nil {
		return tally.Summary(scraper.deps, "intraday", start, 0, err), err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return tally.Summary(scraper.deps, "intraday", start, 0, err), err
	}

	ticker := page.Doc.Find("marquee").First().Text()
	if strings.TrimSpace(ticker) == "" {
		ticker = page.Doc.Find(".ticker").First().Text()
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rows := ParseTicker(ticker, today)
	for range rows {
		tally.Count(ItemOk)
	}

	if len(rows) == 0 {
		log.Info().Msg("ticker empty or not dated today, nothing to write")
		return tally.Summary(scraper.deps, "intraday", start, 0, nil), nil
	}

	written, err := scraper.deps.Library.Upsert(ctx, rows)
	if err != nil {
		return tally.Summary(scraper.deps, "intraday", start, written, err), err
	}

	log.Info().Int64("Rows", written).Msg("intraday trades written")
	return tally.Summary(scraper.deps, "intraday", start, written, nil), nil
}

// ParseTicker parses the marquee text into minimal daily rows. The date
// prefix must equal today; rows with zero volume are dropped; every
// synthesized row has open=high=low=close=last_sale and
// was_traded_today=1.
func ParseTicker(ticker string, today time.Time) []data.Row {
	match := tickerPrefixPattern.FindStringSubmatch(ticker)
	if match == nil {
		return nil
	}

	tickerDate, err := normalize.ToDate(match[1], "2 Jan 2006")
	if err != nil || !tickerDate.Equal(today) {
		return nil
	}

	bars := ticker[len(match[0]):]

	var rows []data.Row
	for _, segment := range strings.Split(bars, "|") {
		segment = strings.TrimSpace(segment)
		bar := tickerBarPattern.FindStringSubmatch(segment)
		if bar == nil {
			continue
		}

		volume, ok := normalize.ToInt(bar[2])
		if !ok || volume == 0 {
			continue
		}

		price := normalize.ToDecimal(bar[3])
		if !price.Valid {
			continue
		}

		summary := &data.DailySummary{
			Symbol:         bar[1],
			Date:           today,
			OpenPrice:      price,
			High:           price,
			Low:            price,
			ClosePrice:     price,
			LastSalePrice:  price,
			WasTradedToday: 1,
			Volume:         volume,
			ChangeDollars:  data.DecimalOrZero(normalize.ToDecimal(bar[4])),
		}
		summary.ComputeValueTraded()
		rows = append(rows, summary)
	}

	return rows
}
