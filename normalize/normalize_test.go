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
package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		want  string
		valid bool
	}{
		{"plain", "12.50", "12.5", true},
		{"thousands", "1,234,567.89", "1234567.89", true},
		{"dollar sign", "$4.20", "4.2", true},
		{"tt dollar", "TT$1.00", "1", true},
		{"percent", "8%", "8", true},
		{"parenthesized negative", "(1,234.56)", "-1234.56", true},
		{"en dash", "–", "", false},
		{"single dash", "-", "", false},
		{"double dash", "--", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"garbage", "N/A", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimal(tt.cell)
			if got.Valid != tt.valid {
				t.Fatalf("ToDecimal(%q).Valid = %v, want %v", tt.cell, got.Valid, tt.valid)
			}
			if tt.valid && got.Decimal.String() != tt.want {
				t.Errorf("ToDecimal(%q) = %s, want %s", tt.cell, got.Decimal, tt.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	if got, ok := ToInt("1,250"); !ok || got != 1250 {
		t.Errorf("ToInt(1,250) = %d, %v", got, ok)
	}
	if got, ok := ToInt("3.99"); !ok || got != 3 {
		t.Errorf("ToInt(3.99) = %d, %v, want truncation to 3", got, ok)
	}
	if _, ok := ToInt("–"); ok {
		t.Error("ToInt en-dash should not be ok")
	}
}

func TestToDate(t *testing.T) {
	got, err := ToDate(" 4 Mar 2024 ", "2 Jan 2006")
	if err != nil {
		t.Fatalf("ToDate returned error: %v", err)
	}
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToDate = %v, want %v", got, want)
	}

	if _, err := ToDate("not a date", "2 Jan 2006"); err == nil {
		t.Error("ToDate should error on garbage")
	}
}

func TestTrimSymbol(t *testing.T) {
	tests := []struct {
		cell string
		want string
	}{
		{"AGL", "AGL"},
		{"AGL(S)", "AGL"},
		{"  CIF   extra words", "CIF"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TrimSymbol(tt.cell); got != tt.want {
			t.Errorf("TrimSymbol(%q) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestSuspended(t *testing.T) {
	if !Suspended("AGL(S)") {
		t.Error("AGL(S) should be suspended")
	}
	if Suspended("AGL") {
		t.Error("AGL should not be suspended")
	}
}

func TestTitleCaseSector(t *testing.T) {
	tests := []struct {
		cell string
		want string
	}{
		{"BANKING", "Banking"},
		{"ansa mcal", "ANSA McAL"},
		{"ANSA MCAL", "ANSA McAL"},
		{"manufacturing ii", "Manufacturing II"},
		{"non banking finance", "Non Banking Finance"},
		{"some new sector", "Some New Sector"},
	}

	for _, tt := range tests {
		if got := TitleCaseSector(tt.cell); got != tt.want {
			t.Errorf("TitleCaseSector(%q) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestHighLowFallback(t *testing.T) {
	open := decimal.NullDecimal{Decimal: decimal.NewFromFloat(2.5), Valid: true}
	high := decimal.NullDecimal{Decimal: decimal.NewFromFloat(2.75), Valid: true}

	gotHigh, gotLow := HighLowFallback(decimal.NullDecimal{}, decimal.NullDecimal{}, open)
	if !gotHigh.Valid || !gotHigh.Decimal.Equal(open.Decimal) {
		t.Errorf("high fallback = %v, want open", gotHigh)
	}
	if !gotLow.Valid || !gotLow.Decimal.Equal(open.Decimal) {
		t.Errorf("low fallback = %v, want open", gotLow)
	}

	gotHigh, _ = HighLowFallback(high, decimal.NullDecimal{}, open)
	if !gotHigh.Decimal.Equal(high.Decimal) {
		t.Errorf("valid high should be kept, got %v", gotHigh)
	}
}

func TestCurrencyOverrides(t *testing.T) {
	overrides := NewCurrencyOverrides(
		[]string{"MPCCEL"},
		[]string{"MPCCEL"}, []string{"GKC"}, []string{"FCI"},
		[]string{"MPCCEL"}, []string{"GKC", "NCBFG"}, nil)

	if got := overrides.PriceCurrency("MPCCEL"); got != "USD" {
		t.Errorf("PriceCurrency(MPCCEL) = %q, want USD", got)
	}
	if got := overrides.PriceCurrency("AGL"); got != "TTD" {
		t.Errorf("PriceCurrency(AGL) = %q, want TTD", got)
	}
	if got := overrides.DividendCurrency("GKC"); got != "JMD" {
		t.Errorf("DividendCurrency(GKC) = %q, want JMD", got)
	}
	if got := overrides.DividendCurrency("FCI"); got != "BBD" {
		t.Errorf("DividendCurrency(FCI) = %q, want BBD", got)
	}
	if got := overrides.FundamentalCurrency("NCBFG"); got != "JMD" {
		t.Errorf("FundamentalCurrency(NCBFG) = %q, want JMD", got)
	}
}
