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

// Package normalize holds the per-cell coercions scrapers apply after table
// extraction. Unparseable numerics become NULL, never zero; unparseable
// dates are errors because a row without its key date cannot be stored.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// enDash is used by the upstream to mean "no value".
const enDash = "–"

// ValueParseError reports a cell that could not be coerced. It is per-cell
// and non-fatal for numerics.
type ValueParseError struct {
	Value  string
	Reason string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("normalize: cannot parse %q: %s", e.Value, e.Reason)
}

// ToDecimal strips currency symbols, thousand separators and percent signs,
// treats parenthesized values as negative, and returns an invalid
// NullDecimal for anything unparseable.
func ToDecimal(cell string) decimal.NullDecimal {
	cleaned := EnDashToNull(cell)
	if cleaned == "" {
		return decimal.NullDecimal{}
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	replacer := strings.NewReplacer("$", "", ",", "", "%", "", "TT", "", "US", "", " ", "")
	cleaned = strings.TrimSpace(replacer.Replace(cleaned))
	if cleaned == "" {
		return decimal.NullDecimal{}
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}

	if negative {
		value = value.Neg()
	}

	return decimal.NullDecimal{Decimal: value, Valid: true}
}

// ToInt coerces a cell to an integer through ToDecimal, truncating any
// fractional part.
func ToInt(cell string) (int64, bool) {
	dec := ToDecimal(cell)
	if !dec.Valid {
		return 0, false
	}

	return dec.Decimal.IntPart(), true
}

// ToDate strictly parses the given layout. Unlike numeric coercion a bad
// date is an error: dates are row keys.
func ToDate(cell string, layout string) (time.Time, error) {
	parsed, err := time.Parse(layout, strings.TrimSpace(cell))
	if err != nil {
		return time.Time{}, &ValueParseError{Value: cell, Reason: err.Error()}
	}

	return parsed, nil
}

// TrimSymbol takes the first whitespace-delimited token of a cell and
// strips the trailing (S) suspended marker.
func TrimSymbol(cell string) string {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return ""
	}

	symbol := fields[0]
	symbol = strings.TrimSuffix(symbol, "(S)")
	return strings.TrimSpace(symbol)
}

// Suspended reports whether the cell carries the (S) suspended marker.
func Suspended(cell string) bool {
	return strings.Contains(cell, "(S)")
}

// sectorFixes overrides default title-casing for names the exchange spells
// with internal capitals or ampersands.
var sectorFixes = map[string]string{
	"banking":             "Banking",
	"conglomerates":       "Conglomerates",
	"energy":              "Energy",
	"manufacturing i":     "Manufacturing I",
	"manufacturing ii":    "Manufacturing II",
	"non banking finance": "Non Banking Finance",
	"non-sector":          "Non-Sector",
	"property":            "Property",
	"trading":             "Trading",
	"ansa mcal":           "ANSA McAL",
	"sme":                 "SME",
	"usd equity":          "USD Equity",
	"mutual funds":        "Mutual Funds",
	"second tier market":  "Second Tier Market",
	"banking / finance":   "Banking / Finance",
	"curated funds":       "Curated Funds",
}

// TitleCaseSector canonicalizes a sector string, with a manual fix-up set
// taking precedence over naive title casing.
func TitleCaseSector(cell string) string {
	lowered := strings.ToLower(strings.TrimSpace(cell))
	if fix, ok := sectorFixes[lowered]; ok {
		return fix
	}

	words := strings.Fields(lowered)
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}

// EnDashToNull coerces the upstream's en-dash "no value" marker (and plain
// dashes and empty strings) to the empty string.
func EnDashToNull(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == enDash || trimmed == "-" || trimmed == "--" {
		return ""
	}

	return trimmed
}

// HighLowFallback substitutes the open price for a NULL high or low. The
// close is never used: on a no-trade day the close column carries the
// previous session's close, not a price observed today.
func HighLowFallback(high, low, open decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	if !high.Valid {
		high = open
	}

	if !low.Valid {
		low = open
	}

	return high, low
}
