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
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
)

// Equities returns every listed equity in the store.
func (myLibrary *Library) Equities(ctx context.Context) ([]*data.Equity, error) {
	var equities []*data.Equity
	err := pgxscan.Select(ctx, myLibrary.Pool, &equities,
		`SELECT symbol, security_name, status, sector, issued_share_capital,
			market_capitalization, currency, financial_year_end, website, news_id
		FROM listed_equities ORDER BY symbol`)
	return equities, err
}

// Symbols returns the set of listed symbols.
func (myLibrary *Library) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := pgxscan.Select(ctx, myLibrary.Pool, &symbols,
		`SELECT symbol FROM listed_equities ORDER BY symbol`)
	return symbols, err
}

// IndexDates returns the distinct dates already present in the historical
// indices table on or after start. The gap planner subtracts these from the
// weekday calendar.
func (myLibrary *Library) IndexDates(ctx context.Context, start time.Time) (map[string]bool, error) {
	var dates []time.Time
	err := pgxscan.Select(ctx, myLibrary.Pool, &dates,
		`SELECT DISTINCT date FROM historical_indices_info WHERE date >= $1`, start)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(dates))
	for _, date := range dates {
		existing[date.Format("2006-01-02")] = true
	}

	return existing, nil
}

// ClosePoint is one (date, close, volume) observation used by the
// technical derivations.
type ClosePoint struct {
	Date       time.Time           `db:"date"`
	ClosePrice decimal.NullDecimal `db:"close_price"`
	Volume     int64               `db:"volume"`
}

// TrailingCloses returns up to limit most-recent daily closes for a symbol,
// newest first.
func (myLibrary *Library) TrailingCloses(ctx context.Context, symbol string, limit int) ([]*ClosePoint, error) {
	var points []*ClosePoint
	err := pgxscan.Select(ctx, myLibrary.Pool, &points,
		`SELECT date, close_price, volume FROM daily_stock_summary
		WHERE symbol = $1 AND close_price IS NOT NULL
		ORDER BY date DESC LIMIT $2`, symbol, limit)
	return points, err
}

// IndexPoint is one index value observation.
type IndexPoint struct {
	Date       time.Time           `db:"date"`
	IndexValue decimal.NullDecimal `db:"index_value"`
}

// TrailingIndexValues returns the named index's values since the given
// date, newest first.
func (myLibrary *Library) TrailingIndexValues(ctx context.Context, indexName string, since time.Time) ([]*IndexPoint, error) {
	var points []*IndexPoint
	err := pgxscan.Select(ctx, myLibrary.Pool, &points,
		`SELECT date, index_value FROM historical_indices_info
		WHERE index_name = $1 AND date >= $2 AND index_value IS NOT NULL
		ORDER BY date DESC`, indexName, since)
	return points, err
}

// ReferencePrice is a close price usable as a valuation reference. The
// nonzero outstanding-bid-volume filter is the filter assumption inherited
// from the source system: a zero bid book is taken to mean the date had no
// real trading interest.
type ReferencePrice struct {
	Date       time.Time       `db:"date"`
	ClosePrice decimal.Decimal `db:"close_price"`
}

// LatestCloseWithBid returns the most recent close for a symbol whose row
// has a nonzero outstanding bid volume.
func (myLibrary *Library) LatestCloseWithBid(ctx context.Context, symbol string) (*ReferencePrice, error) {
	price := &ReferencePrice{}
	err := pgxscan.Get(ctx, myLibrary.Pool, price,
		`SELECT date, close_price FROM daily_stock_summary
		WHERE symbol = $1 AND os_bid_vol > 0 AND close_price IS NOT NULL
		ORDER BY date DESC LIMIT 1`, symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return price, err
}

// CloseOnOrBefore returns the most recent qualifying close at or before the
// reference date; nil when the symbol has no usable price by then.
func (myLibrary *Library) CloseOnOrBefore(ctx context.Context, symbol string, reference time.Time) (*ReferencePrice, error) {
	price := &ReferencePrice{}
	err := pgxscan.Get(ctx, myLibrary.Pool, price,
		`SELECT date, close_price FROM daily_stock_summary
		WHERE symbol = $1 AND date <= $2 AND os_bid_vol > 0 AND close_price IS NOT NULL
		ORDER BY date DESC LIMIT 1`, symbol, reference)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return price, err
}

// DividendEvents returns all dividend events ordered by symbol then record
// date.
func (myLibrary *Library) DividendEvents(ctx context.Context) ([]*data.DividendEvent, error) {
	var events []*data.DividendEvent
	err := pgxscan.Select(ctx, myLibrary.Pool, &events,
		`SELECT symbol, record_date, dividend_amount, currency
		FROM historical_dividend_info ORDER BY symbol, record_date`)
	return events, err
}

// RawFundamentals returns every transcribed fundamental row ordered by
// symbol then period end, the order the ratio derivation's first-difference
// EPS growth depends on.
func (myLibrary *Library) RawFundamentals(ctx context.Context) ([]*data.FundamentalRaw, error) {
	var rows []*data.FundamentalRaw
	err := pgxscan.Select(ctx, myLibrary.Pool, &rows,
		`SELECT symbol, period_end_date, report_type, total_assets, total_liabilities,
			shareholders_equity, net_income, profit_after_tax, basic_eps, dps,
			total_dividends_paid, total_shares_outstanding, cash_equivalents,
			currency, reports_and_statements_referenced
		FROM raw_fundamental_data ORDER BY symbol, period_end_date`)
	return rows, err
}

// ReferencedReports returns the set of report filenames already transcribed
// into the raw fundamentals table.
func (myLibrary *Library) ReferencedReports(ctx context.Context) (map[string]bool, error) {
	var names []string
	err := pgxscan.Select(ctx, myLibrary.Pool, &names,
		`SELECT reports_and_statements_referenced FROM raw_fundamental_data
		WHERE reports_and_statements_referenced <> ''`)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(names))
	for _, name := range names {
		referenced[name] = true
	}

	return referenced, nil
}

// TechnicalSummaries returns the technical rows as last scraped, keyed by
// symbol. The derivation stage merges computed fields into these before
// writing them back.
func (myLibrary *Library) TechnicalSummaries(ctx context.Context) (map[string]*data.TechnicalSummary, error) {
	var rows []*data.TechnicalSummary
	err := pgxscan.Select(ctx, myLibrary.Pool, &rows,
		`SELECT symbol, last_close, sma_20, sma_200, high_52w, low_52w, wtd, mtd,
			ytd, beta, adtv
		FROM technical_analysis_summary`)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]*data.TechnicalSummary, len(rows))
	for _, row := range rows {
		summaries[row.Symbol] = row
	}

	return summaries, nil
}

// Transactions returns every portfolio transaction ordered by user, symbol
// and date.
func (myLibrary *Library) Transactions(ctx context.Context) ([]*data.PortfolioTransaction, error) {
	var transactions []*data.PortfolioTransaction
	err := pgxscan.Select(ctx, myLibrary.Pool, &transactions,
		`SELECT id, user_id, symbol, date, transaction_type, quantity, price
		FROM portfolio_transactions ORDER BY user_id, symbol, date`)
	return transactions, err
}

// SectorMap returns symbol → sector for every listed equity.
func (myLibrary *Library) SectorMap(ctx context.Context) (map[string]string, error) {
	equities, err := myLibrary.Equities(ctx)
	if err != nil {
		return nil, err
	}

	sectors := make(map[string]string, len(equities))
	for _, equity := range equities {
		sectors[equity.Symbol] = equity.Sector
	}

	return sectors, nil
}

// PortfolioUsers returns the distinct user ids present in the transactions
// log.
func (myLibrary *Library) PortfolioUsers(ctx context.Context) ([]uuid.UUID, error) {
	var users []uuid.UUID
	err := pgxscan.Select(ctx, myLibrary.Pool, &users,
		`SELECT DISTINCT user_id FROM portfolio_transactions`)
	return users, err
}
