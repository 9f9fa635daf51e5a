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
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/fx"
	"github.com/trinistats/ttsetl/normalize"
)

// Yields recomputes the trailing calendar-year dividend yield for every
// (symbol, year) that has at least one dividend event. The reference price
// is the last qualifying close at or before December 31 of that year; both
// sides of the ratio are converted to TTD first.
func (deriver *Deriver) Yields(ctx context.Context, rates *fx.Rates, overrides *normalize.CurrencyOverrides) error {
	events, err := deriver.Library.DividendEvents(ctx)
	if err != nil {
		return err
	}

	type symbolYear struct {
		symbol string
		year   int
	}

	totals := make(map[symbolYear]float64)
	for _, event := range events {
		amountTTD, err := convertToTTD(rates, event.Currency, event.Amount.InexactFloat64())
		if err != nil {
			log.Warn().Err(err).Str("Symbol", event.Symbol).
				Str("Currency", event.Currency).Msg("dividend event skipped, no fx rate")
			continue
		}
		key := symbolYear{event.Symbol, event.RecordDate.Year()}
		totals[key] += amountTTD
	}

	var rows []data.Row
	for key, totalTTD := range totals {
		yearEnd := time.Date(key.year, time.December, 31, 0, 0, 0, 0, time.UTC)
		price, err := deriver.Library.CloseOnOrBefore(ctx, key.symbol, yearEnd)
		if err != nil {
			return err
		}
		if price == nil {
			// No usable price history at that year end yet.
			continue
		}

		priceTTD, err := convertToTTD(rates, overrides.PriceCurrency(key.symbol),
			price.ClosePrice.InexactFloat64())
		if err != nil {
			log.Warn().Err(err).Str("Symbol", key.symbol).Msg("yield skipped, no fx rate for price")
			continue
		}

		rows = append(rows, &data.DividendYield{
			Symbol:       key.symbol,
			YieldDate:    yearEnd,
			YieldPercent: data.NullDecimalFromFloat(safeDiv(totalTTD, priceTTD) * 100),
		})
	}

	written, err := deriver.Library.Upsert(ctx, rows)
	if err != nil {
		return err
	}

	log.Info().Int64("Rows", written).Msg("dividend yields written")
	return nil
}

func convertToTTD(rates *fx.Rates, currency string, amount float64) (float64, error) {
	factor, err := rates.ToTTD(currency)
	if err != nil {
		return 0, err
	}
	return amount * factor, nil
}
