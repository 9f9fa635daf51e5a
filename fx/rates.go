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

// Package fx obtains TTD conversion rates from the currency provider once
// per run. A rate fetched at run start is considered valid for the whole
// run, which keeps dividend and price conversions consistent with each
// other (the currency round-trip property).
package fx

import (
	"context"
	"errors"
	"fmt"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// ErrRateUnavailable is returned when the provider has no rate for the
// requested currency.
var ErrRateUnavailable = errors.New("fx: rate unavailable")

type latestResponse struct {
	Response json.RawMessage `json:"response"`
}

// decodeRates accepts both payload shapes the provider has served: currency
// fields directly under "response", and a nested "rates" object. Non-numeric
// fields (date, base) are skipped.
func decodeRates(raw json.RawMessage) map[string]float64 {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	decoded := make(map[string]float64)
	for key, value := range fields {
		if key == "rates" {
			nested := make(map[string]float64)
			if err := json.Unmarshal(value, &nested); err == nil {
				for currency, rate := range nested {
					decoded[currency] = rate
				}
			}
			continue
		}

		var rate float64
		if err := json.Unmarshal(value, &rate); err == nil {
			decoded[key] = rate
		}
	}

	return decoded
}

// Rates caches TTD→CUR factors for one run. Safe for concurrent readers
// across scraper goroutines.
type Rates struct {
	client *resty.Client
	apiURL string
	apiKey string
	cache  *haxmap.Map[string, float64]
}

// New builds an empty per-run rate cache.
func New(apiURL, apiKey string) *Rates {
	return &Rates{
		client: resty.New(),
		apiURL: apiURL,
		apiKey: apiKey,
		cache:  haxmap.New[string, float64](),
	}
}

// Load fetches TTD conversion rates for the given currencies and fills the
// cache. Called once at run start.
func (rates *Rates) Load(ctx context.Context, currencies ...string) error {
	resp, err := rates.client.R().
		SetContext(ctx).
		SetQueryParam("api_key", rates.apiKey).
		SetQueryParam("base", "TTD").
		Get(rates.apiURL)
	if err != nil {
		return fmt.Errorf("fx: fetching rates: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("fx: rate provider returned status %d", resp.StatusCode())
	}

	var parsed latestResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return fmt.Errorf("fx: decoding rates: %w", err)
	}

	decoded := decodeRates(parsed.Response)
	for _, currency := range currencies {
		rate, ok := decoded[currency]
		if !ok || rate == 0 {
			return fmt.Errorf("%w: %s", ErrRateUnavailable, currency)
		}
		rates.cache.Set(currency, rate)
		log.Info().Str("Currency", currency).Float64("TTDRate", rate).Msg("loaded exchange rate")
	}

	rates.cache.Set("TTD", 1.0)
	return nil
}

// ToTTD returns the multiplier converting one unit of currency into TTD.
func (rates *Rates) ToTTD(currency string) (float64, error) {
	if currency == "TTD" || currency == "" {
		return 1.0, nil
	}

	rate, ok := rates.cache.Get(currency)
	if !ok || rate == 0 {
		return 0, fmt.Errorf("%w: %s", ErrRateUnavailable, currency)
	}

	// The provider quotes TTD→CUR; converting back to TTD divides.
	return 1.0 / rate, nil
}

// Seed injects a rate directly. Tests and offline runs use it.
func (rates *Rates) Seed(currency string, ttdPerUnit float64) {
	if ttdPerUnit != 0 {
		rates.cache.Set(currency, 1.0/ttdPerUnit)
	}
}
