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

// The market-quote page exposes seven frames in fixed order. Scrapers
// address them strictly by index; shuffling decoration around them must not
// change behavior.
const (
	frameIndices = iota
	frameOrdinary
	framePreference
	frameSecondTier
	frameSME
	frameMutualFunds
	frameUSDEquity
	quoteFrameCount
)

// Share frame column positions.
const (
	colSymbol = iota
	colOpen
	colHigh
	colLow
	colOSBid
	colOSBidVol
	colOSOffer
	colOSOfferVol
	colLastSale
	colLastTradeDate
	colVolume
	colClose
	colChange
	shareColumnCount
)

// lastTradeLayout matches the "Last Trade Date" cells on the quote page.
const lastTradeLayout = "2 Jan 2006"

// minIndexRows is the valid-trading-day check: the indices frame of a real
// trading day has more than four data rows.
const minIndexRows = 4

// DailySummary scrapes the market-quote page for a set of target dates.
type DailySummary struct {
	deps *Deps
}

// NewDailySummary builds the daily summary scraper.
func NewDailySummary(deps *Deps) *DailySummary {
	return &DailySummary{deps: deps}
}

// RunDates processes one shard of target dates. Per-date failures are
// logged and skipped; the date stays in the gap and self-heals next run.
func (scraper *DailySummary) RunDates(ctx context.Context, dates []time.Time) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	var total int64
	for _, date := range dates {
		rows, outcome := scraper.runDate(ctx, date)
		total += rows
		tally.Count(outcome)

		if ctx.Err() != nil {
			return tally.Summary(scraper.deps, "daily_summary", start, total, ctx.Err()), ctx.Err()
		}
	}

	log.Info().Int("NumDates", len(dates)).Int64("Rows", total).Int("Skipped", tally.Skipped).
		Int("Failed", tally.Failed).Msg("daily summary shard complete")
	return tally.Summary(scraper.deps, "daily_summary", start, total, nil), nil
}

func (scraper *DailySummary) runDate(ctx context.Context, date time.Time) (int64, Outcome) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.quoteURL(date))
	if err != nil {
		log.Warn().Err(err).Str("Date", date.Format("2006-01-02")).Msg("skipping date, fetch failed")
		return 0, ItemFailed
	}

	indices, shares, err := scraper.parseQuotePage(body, date)
	if err != nil {
		log.Debug().Err(err).Str("Date", date.Format("2006-01-02")).Msg("skipping date")
		return 0, ItemSkipped
	}

	// Indices and shares for one date commit in the same transaction so
	// readers see both or neither.
	rows, err := scraper.deps.Library.UpsertGroups(ctx, indices, shares)
	if err != nil {
		log.Error().Err(err).Str("Date", date.Format("2006-01-02")).Msg("daily summary upsert failed")
		return 0, ItemFailed
	}

	return rows, ItemOk
}

// parseQuotePage extracts the index snapshots and the concatenated share
// rows for a date. A page whose indices frame has four or fewer rows is not
// a trading day (weekend tail, holiday, not yet published).
func (scraper *DailySummary) parseQuotePage(body string, date time.Time) (indices []data.Row, shares []data.Row, err error) {
	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, nil, err
	}

	if len(page.Frames) < quoteFrameCount {
		return nil, nil, &tabular.ShapeError{Frame: quoteFrameCount - 1,
			Detail: "market-quote page is missing frames"}
	}

	indexFrame := page.Frames[frameIndices]
	if len(indexFrame.Rows) <= minIndexRows {
		return nil, nil, &tabular.ShapeError{Frame: frameIndices,
			Detail: "not a valid trading day"}
	}

	for _, row := range indexFrame.Rows {
		if snapshot := parseIndexRow(row, date); snapshot != nil {
			indices = append(indices, snapshot)
		}
	}

	for _, frameIdx := range []int{frameOrdinary, framePreference, frameSecondTier, frameSME, frameMutualFunds, frameUSDEquity} {
		for _, row := range page.Frames[frameIdx].Rows {
			if summary := parseShareRow(row, date); summary != nil {
				shares = append(shares, summary)
			}
		}
	}

	return indices, shares, nil
}

// parseIndexRow coerces one market-indices row.
func parseIndexRow(row []string, date time.Time) *data.IndexSnapshot {
	if len(row) < 7 {
		return nil
	}

	name := normalize.EnDashToNull(row[0])
	if name == "" {
		return nil
	}

	volume, _ := normalize.ToInt(row[4])
	numTrades, _ := normalize.ToInt(row[6])

	return &data.IndexSnapshot{
		IndexName:     name,
		Date:          date,
		IndexValue:    normalize.ToDecimal(row[1]),
		IndexChange:   normalize.ToDecimal(row[2]),
		ChangePercent: normalize.ToDecimal(row[3]),
		Volume:        volume,
		ValueTraded:   normalize.ToDecimal(row[5]),
		NumTrades:     numTrades,
	}
}

// parseShareRow coerces one row of a share frame. All six share frames use
// identical normalization: was_traded_today is 1 when the last-trade cell
// parses to the page date and volume is positive, high/low fall back to
// open, and change, volume
// and outstanding volumes default to 0 when NULL.
func parseShareRow(row []string, date time.Time) *data.DailySummary {
	if len(row) < shareColumnCount {
		return nil
	}

	symbol := normalize.TrimSymbol(row[colSymbol])
	if symbol == "" {
		return nil
	}

	summary := &data.DailySummary{
		Symbol:        symbol,
		Date:          date,
		OpenPrice:     normalize.ToDecimal(row[colOpen]),
		High:          normalize.ToDecimal(row[colHigh]),
		Low:           normalize.ToDecimal(row[colLow]),
		ClosePrice:    normalize.ToDecimal(row[colClose]),
		OSBid:         normalize.ToDecimal(row[colOSBid]),
		OSOffer:       normalize.ToDecimal(row[colOSOffer]),
		LastSalePrice: normalize.ToDecimal(row[colLastSale]),
		ChangeDollars: data.DecimalOrZero(normalize.ToDecimal(row[colChange])),
	}

	summary.OSBidVol, _ = normalize.ToInt(row[colOSBidVol])
	summary.OSOfferVol, _ = normalize.ToInt(row[colOSOfferVol])
	summary.Volume, _ = normalize.ToInt(row[colVolume])

	// Upstream sometimes shows today's last-trade date with an empty
	// volume cell; a traded flag requires actual volume.
	if lastTrade, err := normalize.ToDate(row[colLastTradeDate], lastTradeLayout); err == nil {
		if lastTrade.Equal(date) && summary.Volume > 0 {
			summary.WasTradedToday = 1
		}
	}

	summary.High, summary.Low = normalize.HighLowFallback(summary.High, summary.Low, summary.OpenPrice)
	summary.ComputeValueTraded()

	return summary
}
