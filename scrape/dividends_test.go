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

	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/normalize"
)

func dividendTestScraper() *Dividends {
	deps := &Deps{
		Settings: &config.Settings{
			PercentOfParSymbols: []string{"PLD"},
			ParValue:            50.0,
		},
		Currency: normalize.NewCurrencyOverrides(nil,
			[]string{"MPCCEL"}, nil, nil, nil, nil, nil),
	}
	return NewDividends(deps)
}

func TestDividendParseRowPercentOfPar(t *testing.T) {
	scraper := dividendTestScraper()

	event, outcome := scraper.parseRow("PLD", []string{"4 Mar 2024", "8%", "TTD"})
	if outcome != ItemOk {
		t.Fatalf("outcome = %v, want ItemOk", outcome)
	}
	if got := event.Amount.StringFixed(2); got != "4.00" {
		t.Errorf("percent-of-par amount = %s, want 4.00 (50 x 0.08)", got)
	}
}

func TestDividendParseRowCash(t *testing.T) {
	scraper := dividendTestScraper()

	event, outcome := scraper.parseRow("AGL", []string{"4 Mar 2024", "$0.35", "TTD"})
	if outcome != ItemOk {
		t.Fatalf("outcome = %v, want ItemOk", outcome)
	}
	if got := event.Amount.String(); got != "0.35" {
		t.Errorf("amount = %s, want 0.35", got)
	}
	if event.Currency != "TTD" {
		t.Errorf("currency = %q, want TTD", event.Currency)
	}
}

func TestDividendParseRowCurrencyFallback(t *testing.T) {
	scraper := dividendTestScraper()

	event, outcome := scraper.parseRow("MPCCEL", []string{"4 Mar 2024", "0.10", "–"})
	if outcome != ItemOk {
		t.Fatalf("outcome = %v, want ItemOk", outcome)
	}
	if event.Currency != "USD" {
		t.Errorf("currency = %q, want configured USD override", event.Currency)
	}
}

func TestDividendParseRowSkips(t *testing.T) {
	scraper := dividendTestScraper()

	if _, outcome := scraper.parseRow("AGL", []string{"not a date", "0.10"}); outcome != ItemSkipped {
		t.Errorf("bad date outcome = %v, want ItemSkipped", outcome)
	}
	if _, outcome := scraper.parseRow("AGL", []string{"4 Mar 2024", "–"}); outcome != ItemSkipped {
		t.Errorf("null amount outcome = %v, want ItemSkipped", outcome)
	}
	if _, outcome := scraper.parseRow("AGL", []string{"4 Mar 2024"}); outcome != ItemSkipped {
		t.Errorf("short row outcome = %v, want ItemSkipped", outcome)
	}
}
