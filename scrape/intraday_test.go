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
package scrape

import (
	"testing"
	"time"

	"github.com/trinistats/ttsetl/data"
)

const sampleTicker = `Trade Data for 26 Apr 2021 @ 10:06 AM:  AGL  Vol 272  $24.25 (-0.15)  |  CIF  Vol 1,000  $25.05 (0.04)  |  FCI  Vol 875  $6.74 (0.00)`

func TestParseTicker(t *testing.T) {
	today := time.Date(2021, time.April, 26, 0, 0, 0, 0, time.UTC)

	rows := ParseTicker(sampleTicker, today)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := []struct {
		symbol string
		volume int64
		price  string
		change string
	}{
		{"AGL", 272, "24.25", "-0.15"},
		{"CIF", 1000, "25.05", "0.04"},
		{"FCI", 875, "6.74", "0"},
	}

	for idx, expected := range want {
		summary, ok := rows[idx].(*data.DailySummary)
		if !ok {
			t.Fatalf("row %d is %T, want *data.DailySummary", idx, rows[idx])
		}

		if summary.Symbol != expected.symbol {
			t.Errorf("row %d symbol = %q, want %q", idx, summary.Symbol, expected.symbol)
		}
		if summary.Volume != expected.volume {
			t.Errorf("row %d volume = %d, want %d", idx, summary.Volume, expected.volume)
		}
		if got := summary.LastSalePrice.Decimal.String(); got != expected.price {
			t.Errorf("row %d last sale = %s, want %s", idx, got, expected.price)
		}
		if got := summary.ChangeDollars.String(); got != expected.change {
			t.Errorf("row %d change = %s, want %s", idx, got, expected.change)
		}
		if summary.WasTradedToday != 1 {
			t.Errorf("row %d was_traded_today = %d, want 1", idx, summary.WasTradedToday)
		}
		if !summary.OpenPrice.Decimal.Equal(summary.LastSalePrice.Decimal) ||
			!summary.High.Decimal.Equal(summary.LastSalePrice.Decimal) ||
			!summary.Low.Decimal.Equal(summary.LastSalePrice.Decimal) ||
			!summary.ClosePrice.Decimal.Equal(summary.LastSalePrice.Decimal) {
			t.Errorf("row %d open/high/low/close should all equal last sale", idx)
		}
		if !summary.Date.Equal(today) {
			t.Errorf("row %d date = %v, want %v", idx, summary.Date, today)
		}
	}
}

func TestParseTickerWrongDate(t *testing.T) {
	notToday := time.Date(2021, time.April, 27, 0, 0, 0, 0, time.UTC)
	if rows := ParseTicker(sampleTicker, notToday); len(rows) != 0 {
		t.Errorf("stale marquee produced %d rows, want 0", len(rows))
	}
}

func TestParseTickerZeroVolume(t *testing.T) {
	today := time.Date(2021, time.April, 26, 0, 0, 0, 0, time.UTC)
	ticker := `Trade Data for 26 Apr 2021:  AGL  Vol 0  $24.25 (0.00)  |  CIF  Vol 10  $25.05 (0.04)`

	rows := ParseTicker(ticker, today)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (zero-volume bar dropped)", len(rows))
	}
	if rows[0].(*data.DailySummary).Symbol != "CIF" {
		t.Errorf("surviving row is %s, want CIF", rows[0].(*data.DailySummary).Symbol)
	}
}

func TestParseTickerGarbage(t *testing.T) {
	today := time.Date(2021, time.April, 26, 0, 0, 0, 0, time.UTC)
	if rows := ParseTicker("no trade data here", today); rows != nil {
		t.Errorf("garbage ticker produced rows: %v", rows)
	}
}
