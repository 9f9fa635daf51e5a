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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is buy or sell.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// PortfolioTransaction is one append-only buy or sell in a user portfolio.
// Sell quantities are validated against shares remaining at the API layer,
// not here.
type PortfolioTransaction struct {
	ID       uuid.UUID       `db:"id" csv:"-"`
	UserID   uuid.UUID       `db:"user_id" csv:"user_id"`
	Symbol   string          `db:"symbol" csv:"symbol"`
	Date     time.Time       `db:"date" csv:"-"`
	DateText string          `db:"-" csv:"date"`
	Type     TransactionType `db:"transaction_type" csv:"transaction_type"`
	Quantity int64           `db:"quantity" csv:"quantity"`
	Price    decimal.Decimal `db:"price" csv:"price"`
}

func (transaction *PortfolioTransaction) Table() string { return "portfolio_transactions" }

func (transaction *PortfolioTransaction) KeyColumns() []string { return []string{"id"} }

func (transaction *PortfolioTransaction) Columns() []string {
	return []string{"id", "user_id", "symbol", "date", "transaction_type", "quantity", "price"}
}

func (transaction *PortfolioTransaction) Values() []any {
	return []any{transaction.ID, transaction.UserID, transaction.Symbol,
		transaction.Date, string(transaction.Type), transaction.Quantity,
		transaction.Price}
}

// PortfolioSummary is the fully-recomputed position for one (user, symbol).
type PortfolioSummary struct {
	UserID          uuid.UUID           `db:"user_id"`
	Symbol          string              `db:"symbol"`
	SharesRemaining int64               `db:"shares_remaining"`
	AverageCost     decimal.NullDecimal `db:"average_cost"`
	BookCost        decimal.Decimal     `db:"book_cost"`
	MarketPrice     decimal.NullDecimal `db:"current_market_price"`
	MarketValue     decimal.NullDecimal `db:"market_value"`
	TotalGain       decimal.NullDecimal `db:"total_gain_loss"`
	TotalGainPct    decimal.NullDecimal `db:"total_gain_loss_percent"`
}

func (summary *PortfolioSummary) Table() string { return "portfolio_summary" }

func (summary *PortfolioSummary) KeyColumns() []string { return []string{"user_id", "symbol"} }

func (summary *PortfolioSummary) Columns() []string {
	return []string{"user_id", "symbol", "shares_remaining", "average_cost",
		"book_cost", "current_market_price", "market_value", "total_gain_loss",
		"total_gain_loss_percent"}
}

func (summary *PortfolioSummary) Values() []any {
	return []any{summary.UserID, summary.Symbol, summary.SharesRemaining,
		summary.AverageCost, summary.BookCost, summary.MarketPrice,
		summary.MarketValue, summary.TotalGain, summary.TotalGainPct}
}

// PortfolioSector aggregates a user's positions by listed-equity sector.
type PortfolioSector struct {
	UserID       uuid.UUID           `db:"user_id"`
	Sector       string              `db:"sector"`
	BookCost     decimal.Decimal     `db:"book_cost"`
	MarketValue  decimal.NullDecimal `db:"market_value"`
	TotalGain    decimal.NullDecimal `db:"total_gain_loss"`
	TotalGainPct decimal.NullDecimal `db:"total_gain_loss_percent"`
}

func (sector *PortfolioSector) Table() string { return "portfolio_sectors" }

func (sector *PortfolioSector) KeyColumns() []string { return []string{"user_id", "sector"} }

func (sector *PortfolioSector) Columns() []string {
	return []string{"user_id", "sector", "book_cost", "market_value",
		"total_gain_loss", "total_gain_loss_percent"}
}

func (sector *PortfolioSector) Values() []any {
	return []any{sector.UserID, sector.Sector, sector.BookCost,
		sector.MarketValue, sector.TotalGain, sector.TotalGainPct}
}
