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
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// Equities scrapes the securities listing and each symbol's detail page,
// then derives the per-sector listing counts.
type Equities struct {
	deps *Deps
}

// NewEquities builds the listed-equities scraper.
func NewEquities(deps *Deps) *Equities {
	return &Equities{deps: deps}
}

// Run fetches the listing, every detail page, and the news-id select, then
// upserts the deduplicated equities and the sector counts.
func (scraper *Equities) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	symbols, err := scraper.listedSymbols(ctx)
	if err != nil {
		return tally.Summary(scraper.deps, "equities", start, 0, err), err
	}

	newsIDs, err := scraper.newsIDs(ctx)
	if err != nil {
		// News ids enrich the row but their absence should not lose the
		// listing itself.
		log.Warn().Err(err).Msg("could not harvest news ids, continuing without them")
		newsIDs = map[string]int64{}
	}

	seen := make(map[string]bool, len(symbols))
	equities := make([]data.Row, 0, len(symbols))

	for symbol, suspended := range symbols {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		equity, err := scraper.detail(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("skipping symbol detail")
			tally.Count(ItemFailed)
			continue
		}

		if suspended {
			equity.Status = data.StatusSuspended
		}

		equity.NewsID = newsIDs[symbol]
		equity.Currency = scraper.deps.Currency.PriceCurrency(symbol)
		equities = append(equities, equity)
		tally.Count(ItemOk)
	}

	rows, err := scraper.deps.Library.Upsert(ctx, equities)
	if err != nil {
		return tally.Summary(scraper.deps, "equities", start, rows, err), err
	}

	sectorRows, err := scraper.deps.Library.Upsert(ctx, sectorCounts(equities))
	if err != nil {
		return tally.Summary(scraper.deps, "equities", start, rows, err), err
	}

	log.Info().Int64("Equities", rows).Int64("Sectors", sectorRows).Msg("listed equities scraped")
	return tally.Summary(scraper.deps, "equities", start, rows, nil), nil
}

// listedSymbols reads the listing frame and returns symbol → suspended.
func (scraper *Equities) listedSymbols(ctx context.Context) (map[string]bool, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.listingURL())
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	frame, err := page.FrameAt(0)
	if err != nil {
		return nil, err
	}

	if frame.Empty() {
		return nil, &tabular.ShapeError{Frame: 0, Detail: "listing frame has no rows"}
	}

	symbols := make(map[string]bool, len(frame.Rows))
	for _, row := range frame.Rows {
		symbol := normalize.TrimSymbol(row[0])
		if symbol == "" {
			continue
		}
		symbols[symbol] = normalize.Suspended(row[0])
	}

	return symbols, nil
}

// detail extracts one symbol's labeled fields from its detail page. The
// issued share capital figure sits in the cell the page headers as
// "Opening Price" and market capitalization under "Closing Price"; the
// labels are wrong on the live page but stable, so we read by label-row
// lookup instead and keep a test pinning the behavior.
func (scraper *Equities) detail(ctx context.Context, symbol string) (*data.Equity, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.symbolURL(symbol))
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	equity := &data.Equity{
		Symbol: symbol,
		Status: data.StatusActive,
	}

	equity.SecurityName = labeledValue(page, "Security")
	if equity.SecurityName == "" {
		equity.SecurityName = strings.TrimSpace(page.Doc.Find("h1").First().Text())
	}

	equity.Sector = normalize.TitleCaseSector(labeledValue(page, "Sector"))
	equity.FinancialYearEnd = labeledValue(page, "Financial Year End")
	equity.WebSite = labeledValue(page, "Website")

	if strings.EqualFold(labeledValue(page, "Status"), "suspended") {
		equity.Status = data.StatusSuspended
	}

	if capital, ok := normalize.ToInt(labeledValue(page, "Issued Share Capital")); ok {
		equity.IssuedShareCapital = capital
	}

	equity.MarketCapitalization = normalize.ToDecimal(labeledValue(page, "Market Capitalization"))
	if !equity.MarketCapitalization.Valid {
		equity.MarketCapitalization = normalize.ToDecimal(labeledValue(page, "Market Capitalisation"))
	}

	return equity, nil
}

// labeledValue scans every frame for a row whose first cell matches the
// label and returns the following cell.
func labeledValue(page *tabular.Page, label string) string {
	for _, frame := range page.Frames {
		for _, row := range frame.Rows {
			if len(row) >= 2 && strings.EqualFold(strings.TrimSpace(row[0]), label) {
				return strings.TrimSpace(row[1])
			}
		}
	}

	return ""
}

// newsIDs parses the news search form's symbol <select> into
// symbol → upstream numeric id.
func (scraper *Equities) newsIDs(ctx context.Context) (map[string]int64, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.Settings.BaseURL+"/news/")
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	ids := map[string]int64{}
	page.Doc.Find(`select[name="symbol"] option`).Each(func(_ int, option *goquery.Selection) {
		value, exists := option.Attr("value")
		if !exists {
			return
		}

		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return
		}

		symbol := normalize.TrimSymbol(option.Text())
		if symbol != "" {
			ids[symbol] = id
		}
	})

	if len(ids) == 0 {
		return nil, &tabular.ShapeError{Frame: -1, Detail: "no options in news symbol select"}
	}

	return ids, nil
}

// sectorCounts groups the scraped equities by sector.
func sectorCounts(equities []data.Row) []data.Row {
	counts := map[string]int{}
	for _, row := range equities {
		equity := row.(*data.Equity)
		if equity.Sector == "" {
			continue
		}
		counts[equity.Sector]++
	}

	rows := make([]data.Row, 0, len(counts))
	for sector, count := range counts {
		rows = append(rows, &data.SectorCount{Sector: sector, Count: count})
	}

	return rows
}
