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

// DailySummary is one symbol's end-of-day quote. One row per trading day
// per symbol; immutable in principle but rewritten idempotently.
type DailySummary struct {
	Symbol         string              `db:"symbol"`
	Date           time.Time           `db:"date"`
	OpenPrice      decimal.NullDecimal `db:"open_price"`
	High           decimal.NullDecimal `db:"high"`
	Low            decimal.NullDecimal `db:"low"`
	ClosePrice     decimal.NullDecimal `db:"close_price"`
	OSBid          decimal.NullDecimal `db:"os_bid"`
	OSBidVol       int64               `db:"os_bid_vol"`
	OSOffer        decimal.NullDecimal `db:"os_offer"`
	OSOfferVol     int64               `db:"os_offer_vol"`
	LastSalePrice  decimal.NullDecimal `db:"last_sale_price"`
	WasTradedToday int                 `db:"was_traded_today"`
	Volume         int64               `db:"volume"`
	ChangeDollars  decimal.Decimal     `db:"change_dollars"`
	ValueTraded    decimal.NullDecimal `db:"value_traded"`
}

func (summary *DailySummary) Table() string { return "daily_stock_summary" }

func (summary *DailySummary) KeyColumns() []string { return []string{"symbol", "date"} }

func (summary *DailySummary) Columns() []string {
	return []string{"symbol", "date", "open_price", "high", "low", "close_price",
		"os_bid", "os_bid_vol", "os_offer", "os_offer_vol", "last_sale_price",
		"was_traded_today", "volume", "change_dollars", "value_traded"}
}

func (summary *DailySummary) Values() []any {
	return []any{summary.Symbol, summary.Date, summary.OpenPrice, summary.High,
		summary.Low, summary.ClosePrice, summary.OSBid, summary.OSBidVol,
		summary.OSOffer, summary.OSOfferVol, summary.LastSalePrice,
		summary.WasTradedToday, summary.Volume, summary.ChangeDollars,
		summary.ValueTraded}
}

// ComputeValueTraded derives value_traded = volume × last_sale_price.
func (summary *DailySummary) ComputeValueTraded() {
	if !summary.LastSalePrice.Valid {
		summary.ValueTraded = decimal.NullDecimal{}
		return
	}

	value := summary.LastSalePrice.Decimal.Mul(decimal.NewFromInt(summary.Volume))
	summary.ValueTraded = decimal.NullDecimal{Decimal: value, Valid: true}
}

// IndexSnapshot is one market index observation for one trading day.
type IndexSnapshot struct {
	IndexName     string              `db:"index_name"`
	Date          time.Time           `db:"date"`
	IndexValue    decimal.NullDecimal `db:"index_value"`
	IndexChange   decimal.NullDecimal `db:"index_change"`
	ChangePercent decimal.NullDecimal `db:"change_percent"`
	Volume        int64               `db:"volume"`
	ValueTraded   decimal.NullDecimal `db:"value_traded"`
	NumTrades     int64               `db:"num_trades"`
}

func (snapshot *IndexSnapshot) Table() string { return "historical_indices_info" }

func (snapshot *IndexSnapshot) KeyColumns() []string { return []string{"index_name", "date"} }

func (snapshot *IndexSnapshot) Columns() []string {
	return []string{"index_name", "date", "index_value", "index_change",
		"change_percent", "volume", "value_traded", "num_trades"}
}

func (snapshot *IndexSnapshot) Values() []any {
	return []any{snapshot.IndexName, snapshot.Date, snapshot.IndexValue,
		snapshot.IndexChange, snapshot.ChangePercent, snapshot.Volume,
		snapshot.ValueTraded, snapshot.NumTrades}
}
