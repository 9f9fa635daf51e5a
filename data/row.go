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

	"github.com/shopspring/decimal"
)

// Row is one record destined for the store. Implementations declare their
// table, their natural key, and their column values; the store's upserter
// matches on the key columns and overwrites everything else on conflict.
type Row interface {
	Table() string
	KeyColumns() []string
	Columns() []string
	Values() []any
}

// NullDecimalFromFloat converts a float to a nullable decimal, mapping NaN
// and ±Inf to NULL. Derived numerics must never store infinities.
func NullDecimalFromFloat(value float64) decimal.NullDecimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(value), Valid: true}
}

// NullFloat maps NaN and ±Inf to nil for columns bound as plain floats.
func NullFloat(value float64) any {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	return value
}

// DecimalOrZero unwraps a nullable decimal, substituting zero for NULL.
// Used for the columns the daily summary defaults to 0.
func DecimalOrZero(value decimal.NullDecimal) decimal.Decimal {
	if !value.Valid {
		return decimal.Zero
	}

	return value.Decimal
}
