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

// DividendEvent is one declared dividend keyed by record date.
type DividendEvent struct {
	Symbol     string          `db:"symbol"`
	RecordDate time.Time       `db:"record_date"`
	Amount     decimal.Decimal `db:"dividend_amount"`
	Currency   string          `db:"currency"`
}

func (dividend *DividendEvent) Table() string { return "historical_dividend_info" }

func (dividend *DividendEvent) KeyColumns() []string { return []string{"symbol", "record_date"} }

func (dividend *DividendEvent) Columns() []string {
	return []string{"symbol", "record_date", "dividend_amount", "currency"}
}

func (dividend *DividendEvent) Values() []any {
	return []any{dividend.Symbol, dividend.RecordDate, dividend.Amount, dividend.Currency}
}

// DividendYield is the derived yield for one symbol at a calendar year end.
type DividendYield struct {
	Symbol       string              `db:"symbol"`
	YieldDate    time.Time           `db:"date"`
	YieldPercent decimal.NullDecimal `db:"yield_percent"`
}

func (yield *DividendYield) Table() string { return "dividend_yield" }

func (yield *DividendYield) KeyColumns() []string { return []string{"symbol", "date"} }

func (yield *DividendYield) Columns() []string {
	return []string{"symbol", "date", "yield_percent"}
}

func (yield *DividendYield) Values() []any {
	return []any{yield.Symbol, yield.YieldDate, yield.YieldPercent}
}
