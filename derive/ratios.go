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
	"math"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/fx"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/store"
)

// Consecutive filings further apart than these gaps are treated as a break
// in the series and the growth rate across them is left NULL.
const (
	maxAnnualGapMonths    = 15
	maxQuarterlyGapMonths = 5
)

// Ratios recomputes every row of the calculated fundamental ratios from the
// transcribed raw fundamentals joined with the latest qualifying close.
// The close is converted into the filing currency before any price ratio
// is formed. Division by zero and overflow come out as NULL, never as an
// error.
func (deriver *Deriver) Ratios(ctx context.Context, rates *fx.Rates, overrides *normalize.CurrencyOverrides) error {
	raws, err := deriver.Library.RawFundamentals(ctx)
	if err != nil {
		return err
	}

	type series struct {
		symbol     string
		reportType data.ReportType
	}

	grouped := make(map[series][]*data.FundamentalRaw)
	var order []series
	for _, raw := range raws {
		key := series{raw.Symbol, raw.ReportType}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], raw)
	}

	var rows []data.Row
	for _, key := range order {
		filings := grouped[key]

		price, err := deriver.Library.LatestCloseWithBid(ctx, key.symbol)
		if err != nil {
			return err
		}

		for idx, raw := range filings {
			ratios := computeRatios(raw, filingPrice(rates, overrides, raw, price))
			ratios.EPSGrowth = epsGrowth(filings, idx)
			if ratios.PriceToEarnings.Valid && ratios.EPSGrowth.Valid {
				ratios.PEG = data.NullDecimalFromFloat(safeDiv(
					ratios.PriceToEarnings.Decimal.InexactFloat64(),
					ratios.EPSGrowth.Decimal.InexactFloat64()))
			}
			rows = append(rows, ratios)
		}
	}

	written, err := deriver.Library.Upsert(ctx, rows)
	if err != nil {
		return err
	}

	log.Info().Int64("Rows", written).Msg("fundamental ratios written")
	return nil
}

// filingPrice converts the latest close into the filing's currency. NaN
// means no usable price, which leaves every price-based ratio NULL.
func filingPrice(rates *fx.Rates, overrides *normalize.CurrencyOverrides, raw *data.FundamentalRaw, price *store.ReferencePrice) float64 {
	if price == nil {
		return math.NaN()
	}

	filingCurrency := raw.Currency
	if filingCurrency == "" {
		filingCurrency = overrides.FundamentalCurrency(raw.Symbol)
	}

	priceToTTD, err := rates.ToTTD(overrides.PriceCurrency(raw.Symbol))
	if err != nil {
		log.Warn().Err(err).Str("Symbol", raw.Symbol).Msg("no fx rate for price currency")
		return math.NaN()
	}

	filingToTTD, err := rates.ToTTD(filingCurrency)
	if err != nil {
		log.Warn().Err(err).Str("Symbol", raw.Symbol).
			Str("Currency", filingCurrency).Msg("no fx rate for filing currency")
		return math.NaN()
	}

	return price.ClosePrice.InexactFloat64() * priceToTTD / filingToTTD
}

func computeRatios(raw *data.FundamentalRaw, price float64) *data.FundamentalRatios {
	assets := nullFloat(raw.TotalAssets)
	liabilities := nullFloat(raw.TotalLiabilities)
	equity := nullFloat(raw.ShareholdersEquity)
	netIncome := nullFloat(raw.NetIncome)
	profitAfterTax := nullFloat(raw.ProfitAfterTax)
	eps := nullFloat(raw.BasicEPS)
	dps := nullFloat(raw.DPS)
	dividendsPaid := nullFloat(raw.TotalDividendsPaid)
	shares := nullFloat(raw.SharesOutstanding)
	cash := nullFloat(raw.CashEquivalents)

	bookValuePerShare := safeDiv(equity, shares)

	ratios := &data.FundamentalRatios{
		Symbol:            raw.Symbol,
		Date:              raw.PeriodEnd,
		ReportType:        raw.ReportType,
		RoE:               data.NullDecimalFromFloat(safeDiv(netIncome, equity)),
		RoIC:              data.NullDecimalFromFloat(safeDiv(profitAfterTax, equity+liabilities)),
		WorkingCapital:    data.NullDecimalFromFloat(assets - liabilities),
		CurrentRatio:      data.NullDecimalFromFloat(safeDiv(assets, liabilities)),
		EPS:               data.NullDecimalFromFloat(eps),
		PriceToEarnings:   data.NullDecimalFromFloat(safeDiv(price, eps)),
		PriceToBook:       data.NullDecimalFromFloat(safeDiv(price, bookValuePerShare)),
		PriceToDPS:        data.NullDecimalFromFloat(safeDiv(price, dps)),
		DividendYield:     data.NullDecimalFromFloat(safeDiv(dps, price) * 100),
		DividendPayout:    data.NullDecimalFromFloat(safeDiv(dividendsPaid, netIncome) * 100),
		BookValuePerShare: data.NullDecimalFromFloat(bookValuePerShare),
		CashPerShare:      data.NullDecimalFromFloat(safeDiv(cash, shares)),
	}

	return ratios
}

// epsGrowth is the percent change in basic EPS against the previous filing
// of the same series. A gap longer than the report cadence allows breaks
// the series and the growth stays NULL, as does PEG which depends on it.
func epsGrowth(filings []*data.FundamentalRaw, idx int) decimal.NullDecimal {
	if idx == 0 {
		return decimal.NullDecimal{}
	}

	current, previous := filings[idx], filings[idx-1]
	maxGap := maxAnnualGapMonths
	if current.ReportType == data.ReportQuarterly {
		maxGap = maxQuarterlyGapMonths
	}
	if current.PeriodEnd.After(previous.PeriodEnd.AddDate(0, maxGap, 0)) {
		return decimal.NullDecimal{}
	}

	currentEPS := nullFloat(current.BasicEPS)
	previousEPS := nullFloat(previous.BasicEPS)
	return data.NullDecimalFromFloat(safeDiv(currentEPS-previousEPS, math.Abs(previousEPS)) * 100)
}

// nullFloat maps a NULL decimal to NaN so arithmetic propagates the hole.
func nullFloat(value decimal.NullDecimal) float64 {
	if !value.Valid {
		return math.NaN()
	}

	return value.Decimal.InexactFloat64()
}
