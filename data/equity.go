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

import "github.com/shopspring/decimal"

// EquityStatus is the listing status published by the exchange.
type EquityStatus string

const (
	StatusActive    EquityStatus = "active"
	StatusSuspended EquityStatus = "suspended"
)

// Equity is one listed security. Created on first observation and rewritten
// whenever the listing page is re-scraped.
type Equity struct {
	Symbol               string              `db:"symbol"`
	SecurityName         string              `db:"security_name"`
	Status               EquityStatus        `db:"status"`
	Sector               string              `db:"sector"`
	IssuedShareCapital   int64               `db:"issued_share_capital"`
	MarketCapitalization decimal.NullDecimal `db:"market_capitalization"`
	Currency             string              `db:"currency"`
	FinancialYearEnd     string              `db:"financial_year_end"`
	WebSite              string              `db:"website"`
	// NewsID is the upstream's internal numeric id for the symbol,
	// harvested from the news search form and required by news endpoints.
	NewsID int64 `db:"news_id"`
}

func (equity *Equity) Table() string { return "listed_equities" }

func (equity *Equity) KeyColumns() []string { return []string{"symbol"} }

func (equity *Equity) Columns() []string {
	return []string{"symbol", "security_name", "status", "sector", "issued_share_capital",
		"market_capitalization", "currency", "financial_year_end", "website", "news_id"}
}

func (equity *Equity) Values() []any {
	return []any{equity.Symbol, equity.SecurityName, string(equity.Status), equity.Sector,
		equity.IssuedShareCapital, equity.MarketCapitalization, equity.Currency,
		equity.FinancialYearEnd, equity.WebSite, equity.NewsID}
}

// SectorCount aggregates the number of listed equities per sector.
type SectorCount struct {
	Sector string `db:"sector"`
	Count  int    `db:"num_listed"`
}

func (sectorCount *SectorCount) Table() string { return "listed_equities_per_sector" }

func (sectorCount *SectorCount) KeyColumns() []string { return []string{"sector"} }

func (sectorCount *SectorCount) Columns() []string { return []string{"sector", "num_listed"} }

func (sectorCount *SectorCount) Values() []any {
	return []any{sectorCount.Sector, sectorCount.Count}
}
