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

// CurrencyOverrides tags symbols whose prices, dividends or filings are not
// TTD-denominated. The sets come from configuration, not code.
type CurrencyOverrides struct {
	price       map[string]string
	dividend    map[string]string
	fundamental map[string]string
}

// NewCurrencyOverrides builds the override lookup from per-currency symbol
// lists.
func NewCurrencyOverrides(usdPrice, usdDiv, jmdDiv, bbdDiv, usdFund, jmdFund, bbdFund []string) *CurrencyOverrides {
	overrides := &CurrencyOverrides{
		price:       map[string]string{},
		dividend:    map[string]string{},
		fundamental: map[string]string{},
	}

	tag := func(dst map[string]string, currency string, symbols []string) {
		for _, symbol := range symbols {
			dst[symbol] = currency
		}
	}

	tag(overrides.price, "USD", usdPrice)
	tag(overrides.dividend, "USD", usdDiv)
	tag(overrides.dividend, "JMD", jmdDiv)
	tag(overrides.dividend, "BBD", bbdDiv)
	tag(overrides.fundamental, "USD", usdFund)
	tag(overrides.fundamental, "JMD", jmdFund)
	tag(overrides.fundamental, "BBD", bbdFund)

	return overrides
}

// PriceCurrency returns the listing currency for a symbol, defaulting TTD.
func (c *CurrencyOverrides) PriceCurrency(symbol string) string {
	if currency, ok := c.price[symbol]; ok {
		return currency
	}

	return "TTD"
}

// DividendCurrency returns the declaration currency for dividends.
func (c *CurrencyOverrides) DividendCurrency(symbol string) string {
	if currency, ok := c.dividend[symbol]; ok {
		return currency
	}

	return "TTD"
}

// FundamentalCurrency returns the reporting currency for filings.
func (c *CurrencyOverrides) FundamentalCurrency(symbol string) string {
	if currency, ok := c.fundamental[symbol]; ok {
		return currency
	}

	return "TTD"
}
