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
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNullDecimalFromFloat(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"finite", 3.14, true},
		{"zero", 0, true},
		{"negative", -42.5, true},
		{"nan", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NullDecimalFromFloat(tt.value)
			if got.Valid != tt.valid {
				t.Fatalf("NullDecimalFromFloat(%v).Valid = %v, want %v", tt.value, got.Valid, tt.valid)
			}
			if tt.valid && got.Decimal.InexactFloat64() != tt.value {
				t.Errorf("NullDecimalFromFloat(%v) = %v", tt.value, got.Decimal)
			}
		})
	}
}

func TestNullFloat(t *testing.T) {
	if got := NullFloat(math.NaN()); got != nil {
		t.Errorf("NullFloat(NaN) = %v, want nil", got)
	}
	if got := NullFloat(1.5); got != 1.5 {
		t.Errorf("NullFloat(1.5) = %v", got)
	}
}

func TestDecimalOrZero(t *testing.T) {
	if got := DecimalOrZero(decimal.NullDecimal{}); !got.IsZero() {
		t.Errorf("DecimalOrZero(NULL) = %v, want 0", got)
	}

	val := decimal.NullDecimal{Decimal: decimal.NewFromInt(7), Valid: true}
	if got := DecimalOrZero(val); !got.Equal(decimal.NewFromInt(7)) {
		t.Errorf("DecimalOrZero(7) = %v", got)
	}
}

func TestComputeValueTraded(t *testing.T) {
	summary := &DailySummary{
		Volume:        1000,
		LastSalePrice: decimal.NullDecimal{Decimal: decimal.NewFromFloat(24.40), Valid: true},
	}
	summary.ComputeValueTraded()
	if !summary.ValueTraded.Valid || summary.ValueTraded.Decimal.String() != "24400" {
		t.Errorf("value_traded = %v, want 24400", summary.ValueTraded)
	}

	noSale := &DailySummary{Volume: 1000}
	noSale.ComputeValueTraded()
	if noSale.ValueTraded.Valid {
		t.Errorf("value_traded without a last sale = %v, want NULL", noSale.ValueTraded)
	}
}
