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

// TechnicalSummary is the per-symbol technical snapshot, recomputed on
// every run. The scraped fields (last close, 52-week high, WTD/MTD/YTD)
// come off the symbol page; the rest are derived from stored history.
type TechnicalSummary struct {
	Symbol    string              `db:"symbol"`
	LastClose decimal.NullDecimal `db:"last_close"`
	SMA20     decimal.NullDecimal `db:"sma_20"`
	SMA200    decimal.NullDecimal `db:"sma_200"`
	High52W   decimal.NullDecimal `db:"high_52w"`
	Low52W    decimal.NullDecimal `db:"low_52w"`
	WTD       decimal.NullDecimal `db:"wtd"`
	MTD       decimal.NullDecimal `db:"mtd"`
	YTD       decimal.NullDecimal `db:"ytd"`
	Beta      decimal.NullDecimal `db:"beta"`
	ADTV30    decimal.NullDecimal `db:"adtv"`
}

func (technical *TechnicalSummary) Table() string { return "technical_analysis_summary" }

func (technical *TechnicalSummary) KeyColumns() []string { return []string{"symbol"} }

func (technical *TechnicalSummary) Columns() []string {
	return []string{"symbol", "last_close", "sma_20", "sma_200", "high_52w",
		"low_52w", "wtd", "mtd", "ytd", "beta", "adtv"}
}

func (technical *TechnicalSummary) Values() []any {
	return []any{technical.Symbol, technical.LastClose, technical.SMA20,
		technical.SMA200, technical.High52W, technical.Low52W, technical.WTD,
		technical.MTD, technical.YTD, technical.Beta, technical.ADTV30}
}
