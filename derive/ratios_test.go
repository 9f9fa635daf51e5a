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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/data"
)

func dec(value float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(value), Valid: true}
}

func rawFiling(periodEnd time.Time) *data.FundamentalRaw {
	return &data.FundamentalRaw{
		Symbol:             "AGL",
		PeriodEnd:          periodEnd,
		ReportType:         data.ReportAnnual,
		TotalAssets:        dec(1000),
		TotalLiabilities:   dec(400),
		ShareholdersEquity: dec(600),
		NetIncome:          dec(120),
		ProfitAfterTax:     dec(110),
		BasicEPS:           dec(1.2),
		DPS:                dec(0.5),
		TotalDividendsPaid: dec(50),
		SharesOutstanding:  dec(100),
		CashEquivalents:    dec(80),
		Currency:           "TTD",
	}
}

func TestComputeRatios(t *testing.T) {
	ratios := computeRatios(rawFiling(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)), 24.0)

	checks := []struct {
		name string
		got  decimal.NullDecimal
		want float64
	}{
		{"return_on_equity", ratios.RoE, 0.2},
		{"return_on_invested_capital", ratios.RoIC, 0.11},
		{"working_capital", ratios.WorkingCapital, 600},
		{"current_ratio", ratios.CurrentRatio, 2.5},
		{"eps", ratios.EPS, 1.2},
		{"price_to_earnings", ratios.PriceToEarnings, 20},
		{"price_to_book", ratios.PriceToBook, 4},
		{"price_to_dps", ratios.PriceToDPS, 48},
		{"book_value_per_share", ratios.BookValuePerShare, 6},
		{"cash_per_share", ratios.CashPerShare, 0.8},
	}

	for _, check := range checks {
		if !check.got.Valid {
			t.Errorf("%s is NULL, want %v", check.name, check.want)
			continue
		}
		if got := check.got.Decimal.InexactFloat64(); !closeTo(got, check.want) {
			t.Errorf("%s = %v, want %v", check.name, got, check.want)
		}
	}

	if !ratios.DividendYield.Valid || !closeTo(ratios.DividendYield.Decimal.InexactFloat64(), 0.5/24.0*100) {
		t.Errorf("dividend_yield = %v", ratios.DividendYield)
	}
}

func TestComputeRatiosZeroEPS(t *testing.T) {
	raw := rawFiling(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	raw.BasicEPS = dec(0)

	ratios := computeRatios(raw, 24.0)
	if ratios.PriceToEarnings.Valid {
		t.Errorf("price_to_earnings = %v, want NULL when EPS is zero", ratios.PriceToEarnings)
	}
	if !ratios.EPS.Valid || !ratios.EPS.Decimal.IsZero() {
		t.Errorf("eps itself should still be 0, got %v", ratios.EPS)
	}
}

func TestComputeRatiosNoPrice(t *testing.T) {
	ratios := computeRatios(rawFiling(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)), nullFloat(decimal.NullDecimal{}))

	if ratios.PriceToEarnings.Valid || ratios.PriceToBook.Valid || ratios.PriceToDPS.Valid || ratios.DividendYield.Valid {
		t.Error("price ratios should all be NULL without a reference price")
	}
	if !ratios.RoE.Valid {
		t.Error("balance sheet ratios should survive a missing price")
	}
}

func TestComputeRatiosMissingInputs(t *testing.T) {
	raw := rawFiling(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	raw.ShareholdersEquity = decimal.NullDecimal{}
	raw.SharesOutstanding = decimal.NullDecimal{}

	ratios := computeRatios(raw, 24.0)
	if ratios.RoE.Valid || ratios.BookValuePerShare.Valid || ratios.CashPerShare.Valid {
		t.Error("ratios depending on NULL inputs must be NULL")
	}
	if !ratios.CurrentRatio.Valid {
		t.Error("current_ratio does not depend on equity and should be present")
	}
}

func TestEPSGrowth(t *testing.T) {
	filings := []*data.FundamentalRaw{
		rawFiling(time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)),
		rawFiling(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)),
		rawFiling(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
	}
	filings[1].BasicEPS = dec(1.5)

	if got := epsGrowth(filings, 0); got.Valid {
		t.Errorf("first filing growth = %v, want NULL", got)
	}

	got := epsGrowth(filings, 1)
	if !got.Valid || !closeTo(got.Decimal.InexactFloat64(), 25) {
		t.Errorf("growth = %v, want 25%%", got)
	}

	// Three-year hole between filings breaks the series.
	if got := epsGrowth(filings, 2); got.Valid {
		t.Errorf("growth across a gap = %v, want NULL", got)
	}
}

func TestEPSGrowthNegativeBase(t *testing.T) {
	filings := []*data.FundamentalRaw{
		rawFiling(time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)),
		rawFiling(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)),
	}
	filings[0].BasicEPS = dec(-1.0)
	filings[1].BasicEPS = dec(0.5)

	got := epsGrowth(filings, 1)
	if !got.Valid || !closeTo(got.Decimal.InexactFloat64(), 150) {
		t.Errorf("growth from a loss = %v, want +150%% against the absolute base", got)
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
