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

	"github.com/shopspring/decimal"
)

// ReportType distinguishes annual filings from quarterly statements.
type ReportType string

const (
	ReportAnnual    ReportType = "annual"
	ReportQuarterly ReportType = "quarterly"
)

// FundamentalRaw holds the line items an analyst transcribed from a filing.
// These are operator-entered inputs to the ratio derivations, keyed by
// (symbol, period end, report type).
type FundamentalRaw struct {
	Symbol             string              `db:"symbol"`
	PeriodEnd          time.Time           `db:"period_end_date"`
	ReportType         ReportType          `db:"report_type"`
	TotalAssets        decimal.NullDecimal `db:"total_assets"`
	TotalLiabilities   decimal.NullDecimal `db:"total_liabilities"`
	ShareholdersEquity decimal.NullDecimal `db:"shareholders_equity"`
	NetIncome          decimal.NullDecimal `db:"net_income"`
	ProfitAfterTax     decimal.NullDecimal `db:"profit_after_tax"`
	BasicEPS           decimal.NullDecimal `db:"basic_eps"`
	DPS                decimal.NullDecimal `db:"dps"`
	TotalDividendsPaid decimal.NullDecimal `db:"total_dividends_paid"`
	SharesOutstanding  decimal.NullDecimal `db:"total_shares_outstanding"`
	CashEquivalents    decimal.NullDecimal `db:"cash_equivalents"`
	Currency           string              `db:"currency"`
	// ReportsReferenced names the PDF files this row was transcribed
	// from; the outstanding-reports check compares download filenames
	// against this column.
	ReportsReferenced string `db:"reports_and_statements_referenced"`
}

func (raw *FundamentalRaw) Table() string { return "raw_fundamental_data" }

func (raw *FundamentalRaw) KeyColumns() []string {
	return []string{"symbol", "period_end_date", "report_type"}
}

func (raw *FundamentalRaw) Columns() []string {
	return []string{"symbol", "period_end_date", "report_type", "total_assets",
		"total_liabilities", "shareholders_equity", "net_income", "profit_after_tax",
		"basic_eps", "dps", "total_dividends_paid", "total_shares_outstanding",
		"cash_equivalents", "currency", "reports_and_statements_referenced"}
}

func (raw *FundamentalRaw) Values() []any {
	return []any{raw.Symbol, raw.PeriodEnd, string(raw.ReportType), raw.TotalAssets,
		raw.TotalLiabilities, raw.ShareholdersEquity, raw.NetIncome, raw.ProfitAfterTax,
		raw.BasicEPS, raw.DPS, raw.TotalDividendsPaid, raw.SharesOutstanding,
		raw.CashEquivalents, raw.Currency, raw.ReportsReferenced}
}

// FundamentalRatios is the derived analyst view of one raw fundamental row
// joined with the latest close price. A ratios row exists iff its raw row
// exists; overflow and division by zero are stored as NULL.
type FundamentalRatios struct {
	Symbol            string              `db:"symbol"`
	Date              time.Time           `db:"date"`
	ReportType        ReportType          `db:"report_type"`
	RoE               decimal.NullDecimal `db:"return_on_equity"`
	RoIC              decimal.NullDecimal `db:"return_on_invested_capital"`
	WorkingCapital    decimal.NullDecimal `db:"working_capital"`
	CurrentRatio      decimal.NullDecimal `db:"current_ratio"`
	EPS               decimal.NullDecimal `db:"eps"`
	EPSGrowth         decimal.NullDecimal `db:"eps_growth_rate"`
	PriceToEarnings   decimal.NullDecimal `db:"price_to_earnings_ratio"`
	PriceToBook       decimal.NullDecimal `db:"price_to_book_ratio"`
	PriceToDPS        decimal.NullDecimal `db:"price_to_dividends_per_share_ratio"`
	PEG               decimal.NullDecimal `db:"peg"`
	DividendYield     decimal.NullDecimal `db:"dividend_yield"`
	DividendPayout    decimal.NullDecimal `db:"dividend_payout_ratio"`
	BookValuePerShare decimal.NullDecimal `db:"book_value_per_share"`
	CashPerShare      decimal.NullDecimal `db:"cash_per_share"`
}

func (ratios *FundamentalRatios) Table() string { return "calculated_fundamental_ratios" }

func (ratios *FundamentalRatios) KeyColumns() []string {
	return []string{"symbol", "date", "report_type"}
}

func (ratios *FundamentalRatios) Columns() []string {
	return []string{"symbol", "date", "report_type", "return_on_equity",
		"return_on_invested_capital", "working_capital", "current_ratio", "eps",
		"eps_growth_rate", "price_to_earnings_ratio", "price_to_book_ratio",
		"price_to_dividends_per_share_ratio", "peg", "dividend_yield",
		"dividend_payout_ratio", "book_value_per_share", "cash_per_share"}
}

func (ratios *FundamentalRatios) Values() []any {
	return []any{ratios.Symbol, ratios.Date, string(ratios.ReportType), ratios.RoE,
		ratios.RoIC, ratios.WorkingCapital, ratios.CurrentRatio, ratios.EPS,
		ratios.EPSGrowth, ratios.PriceToEarnings, ratios.PriceToBook,
		ratios.PriceToDPS, ratios.PEG, ratios.DividendYield, ratios.DividendPayout,
		ratios.BookValuePerShare, ratios.CashPerShare}
}
