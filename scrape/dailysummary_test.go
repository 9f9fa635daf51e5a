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
	"strings"
	"testing"
	"time"

	"github.com/trinistats/ttsetl/data"
)

func quoteDate() time.Time {
	return time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
}

func TestParseShareRowTraded(t *testing.T) {
	row := []string{
		"AGL", "24.25", "24.50", "24.10", "24.00", "500", "24.60", "200",
		"24.40", "4 Mar 2024", "1,000", "24.40", "0.15",
	}

	summary := parseShareRow(row, quoteDate())
	if summary == nil {
		t.Fatal("parseShareRow returned nil")
	}

	if summary.WasTradedToday != 1 {
		t.Errorf("was_traded_today = %d, want 1", summary.WasTradedToday)
	}
	if summary.Volume != 1000 {
		t.Errorf("volume = %d, want 1000", summary.Volume)
	}
	if !summary.ValueTraded.Valid || summary.ValueTraded.Decimal.String() != "24400" {
		t.Errorf("value_traded = %v, want 24400 (volume x last sale)", summary.ValueTraded)
	}
	if summary.OSBidVol != 500 || summary.OSOfferVol != 200 {
		t.Errorf("outstanding volumes = %d/%d, want 500/200", summary.OSBidVol, summary.OSOfferVol)
	}
}

func TestParseShareRowTodayDateNoVolume(t *testing.T) {
	// Today's last-trade date but an en-dash volume cell. The traded flag
	// must stay 0 so every was_traded_today=1 row has volume > 0.
	row := []string{
		"FCI", "6.74", "–", "–", "6.70", "100", "6.80", "50",
		"6.74", "4 Mar 2024", "–", "6.74", "0.00",
	}

	summary := parseShareRow(row, quoteDate())
	if summary == nil {
		t.Fatal("parseShareRow returned nil")
	}

	if summary.WasTradedToday != 0 {
		t.Errorf("was_traded_today = %d, want 0 when volume is missing", summary.WasTradedToday)
	}
	if summary.Volume != 0 {
		t.Errorf("volume = %d, want 0 default", summary.Volume)
	}
}

func TestParseShareRowNotTraded(t *testing.T) {
	// Stale last-trade date, en-dash high/low, null change and volume.
	row := []string{
		"CIF", "28.50", "–", "–", "28.00", "–", "29.00", "–",
		"28.50", "1 Mar 2024", "–", "28.50", "–",
	}

	summary := parseShareRow(row, quoteDate())
	if summary == nil {
		t.Fatal("parseShareRow returned nil")
	}

	if summary.WasTradedToday != 0 {
		t.Errorf("was_traded_today = %d, want 0", summary.WasTradedToday)
	}
	if summary.Volume != 0 {
		t.Errorf("volume = %d, want 0 default", summary.Volume)
	}
	if !summary.ChangeDollars.IsZero() {
		t.Errorf("change = %s, want 0 default", summary.ChangeDollars)
	}
	if !summary.High.Valid || summary.High.Decimal.String() != "28.5" {
		t.Errorf("high = %v, want open fallback 28.5", summary.High)
	}
	if !summary.Low.Valid || summary.Low.Decimal.String() != "28.5" {
		t.Errorf("low = %v, want open fallback 28.5", summary.Low)
	}
}

func TestParseShareRowRejects(t *testing.T) {
	if got := parseShareRow([]string{"AGL", "1.00"}, quoteDate()); got != nil {
		t.Error("short row should be rejected")
	}
	if got := parseShareRow(make([]string, shareColumnCount), quoteDate()); got != nil {
		t.Error("row with empty symbol should be rejected")
	}
}

func TestParseIndexRow(t *testing.T) {
	row := []string{"Composite Index", "1,234.56", "5.67", "0.46", "125,000", "3,456,789.00", "42"}

	snapshot := parseIndexRow(row, quoteDate())
	if snapshot == nil {
		t.Fatal("parseIndexRow returned nil")
	}

	if snapshot.IndexName != "Composite Index" {
		t.Errorf("index name = %q", snapshot.IndexName)
	}
	if snapshot.IndexValue.Decimal.String() != "1234.56" {
		t.Errorf("index value = %s, want 1234.56", snapshot.IndexValue.Decimal)
	}
	if snapshot.Volume != 125000 || snapshot.NumTrades != 42 {
		t.Errorf("volume/trades = %d/%d, want 125000/42", snapshot.Volume, snapshot.NumTrades)
	}
}

// quotePage builds a minimal market-quote page with the full frame
// complement. indexRows controls whether the page passes the
// valid-trading-day check.
func quotePage(indexRows int) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	b.WriteString("<tr><th>Index</th><th>Value</th><th>Change</th><th>Change%</th><th>Volume</th><th>Value Traded</th><th>Trades</th></tr>")
	names := []string{"All T&amp;T Index", "Composite Index", "Cross-Listed Index", "SME Index", "Mutual Fund Index", "USD Index"}
	for i := 0; i < indexRows; i++ {
		b.WriteString("<tr><td>" + names[i%len(names)] + "</td><td>1,000.00</td><td>1.00</td><td>0.10</td><td>100</td><td>1,000.00</td><td>5</td></tr>")
	}
	b.WriteString("</table>")

	// One ordinary-share row, then four empty frames and one more row in
	// the USD equity frame.
	b.WriteString("<table><tr><td>AGL</td><td>24.25</td><td>24.50</td><td>24.10</td><td>24.00</td><td>500</td><td>24.60</td><td>200</td><td>24.40</td><td>4 Mar 2024</td><td>1,000</td><td>24.40</td><td>0.15</td></tr></table>")
	b.WriteString("<table></table><table></table><table></table><table></table>")
	b.WriteString("<table><tr><td>MPCCEL</td><td>0.95</td><td>0.95</td><td>0.95</td><td>0.90</td><td>100</td><td>1.00</td><td>50</td><td>0.95</td><td>4 Mar 2024</td><td>250</td><td>0.95</td><td>0.00</td></tr></table>")
	b.WriteString("</body></html>")
	return b.String()
}

func TestParseQuotePageValidDay(t *testing.T) {
	scraper := &DailySummary{deps: &Deps{}}

	indices, shares, err := scraper.parseQuotePage(quotePage(5), quoteDate())
	if err != nil {
		t.Fatalf("parseQuotePage returned error: %v", err)
	}
	if len(indices) != 5 {
		t.Errorf("got %d index rows, want 5", len(indices))
	}
	if len(shares) != 2 {
		t.Fatalf("got %d share rows, want 2", len(shares))
	}
	if shares[1].(*data.DailySummary).Symbol != "MPCCEL" {
		t.Errorf("second share row symbol = %s, want MPCCEL", shares[1].(*data.DailySummary).Symbol)
	}
}

func TestParseQuotePageNonTradingDay(t *testing.T) {
	scraper := &DailySummary{deps: &Deps{}}

	if _, _, err := scraper.parseQuotePage(quotePage(4), quoteDate()); err == nil {
		t.Error("four index rows should fail the valid-trading-day check")
	}
}

func TestParseQuotePageMissingFrames(t *testing.T) {
	scraper := &DailySummary{deps: &Deps{}}

	if _, _, err := scraper.parseQuotePage("<html><body><table></table></body></html>", quoteDate()); err == nil {
		t.Error("page with missing frames should error")
	}
}
