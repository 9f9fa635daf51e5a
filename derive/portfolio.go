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

package derive

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
)

var hundred = decimal.NewFromInt(100)

// position is the running state of one (user, symbol) while replaying its
// transactions in date order. Book cost accumulates buys only; sells reduce
// the share count and leave the book untouched.
type position struct {
	userID uuid.UUID
	symbol string
	shares int64
	bought int64
	book   decimal.Decimal
}

// Portfolio fully recomputes every user's per-symbol summary and sector
// aggregates from the transaction log. Positions are replayed from scratch
// on every run.
func (deriver *Deriver) Portfolio(ctx context.Context) error {
	transactions, err := deriver.Library.Transactions(ctx)
	if err != nil {
		return err
	}

	sectors, err := deriver.Library.SectorMap(ctx)
	if err != nil {
		return err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	type holding struct {
		userID uuid.UUID
		symbol string
	}

	positions := make(map[holding]*position)
	var order []holding
	for _, transaction := range transactions {
		key := holding{transaction.UserID, transaction.Symbol}
		current, ok := positions[key]
		if !ok {
			current = &position{userID: transaction.UserID, symbol: transaction.Symbol}
			positions[key] = current
			order = append(order, key)
		}
		current.apply(transaction)
	}

	type sectorKey struct {
		userID uuid.UUID
		sector string
	}

	sectorTotals := make(map[sectorKey]*data.PortfolioSector)
	var sectorOrder []sectorKey

	var rows []data.Row
	for _, key := range order {
		current := positions[key]

		summary := &data.PortfolioSummary{
			UserID:          current.userID,
			Symbol:          current.symbol,
			SharesRemaining: current.shares,
			BookCost:        current.book,
		}
		if current.bought > 0 {
			summary.AverageCost = decimal.NewNullDecimal(
				current.book.Div(decimal.NewFromInt(current.bought)))
		}

		price, err := deriver.Library.LatestCloseWithBid(ctx, current.symbol)
		if err != nil {
			return err
		}
		if price != nil {
			marketValue := price.ClosePrice.Mul(decimal.NewFromInt(current.shares))
			gain := marketValue.Sub(current.book)
			summary.MarketPrice = decimal.NewNullDecimal(price.ClosePrice)
			summary.MarketValue = decimal.NewNullDecimal(marketValue)
			summary.TotalGain = decimal.NewNullDecimal(gain)
			if !current.book.IsZero() {
				summary.TotalGainPct = decimal.NewNullDecimal(
					gain.Div(current.book).Mul(hundred))
			}
		} else {
			log.Warn().Str("Symbol", current.symbol).Msg("position has no market price")
		}
		rows = append(rows, summary)

		sector, ok := sectors[current.symbol]
		if !ok {
			sector = "Unknown"
		}
		sk := sectorKey{current.userID, sector}
		total, ok := sectorTotals[sk]
		if !ok {
			total = &data.PortfolioSector{UserID: current.userID, Sector: sector}
			sectorTotals[sk] = total
			sectorOrder = append(sectorOrder, sk)
		}
		total.BookCost = total.BookCost.Add(current.book)
		if summary.MarketValue.Valid {
			total.MarketValue = decimal.NewNullDecimal(
				data.DecimalOrZero(total.MarketValue).Add(summary.MarketValue.Decimal))
		}
	}

	var sectorRows []data.Row
	for _, sk := range sectorOrder {
		total := sectorTotals[sk]
		if total.MarketValue.Valid {
			gain := total.MarketValue.Decimal.Sub(total.BookCost)
			total.TotalGain = decimal.NewNullDecimal(gain)
			if !total.BookCost.IsZero() {
				// Recomputed from the summed book, not averaged
				// over per-symbol percentages.
				total.TotalGainPct = decimal.NewNullDecimal(
					gain.Div(total.BookCost).Mul(hundred))
			}
		}
		sectorRows = append(sectorRows, total)
	}

	written, err := deriver.Library.UpsertGroups(ctx, rows, sectorRows)
	if err != nil {
		return err
	}

	log.Info().Int64("Rows", written).Msg("portfolio valuations written")
	return nil
}

// apply folds one transaction into the position. Oversells clamp at zero
// shares rather than going negative; the import path validates quantities
// before they reach the log.
func (current *position) apply(transaction *data.PortfolioTransaction) {
	switch transaction.Type {
	case data.TransactionBuy:
		current.shares += transaction.Quantity
		current.bought += transaction.Quantity
		current.book = current.book.Add(
			decimal.NewFromInt(transaction.Quantity).Mul(transaction.Price))
	case data.TransactionSell:
		if current.shares <= 0 {
			return
		}
		sold := transaction.Quantity
		if sold > current.shares {
			sold = current.shares
		}
		current.shares -= sold
	}
}
