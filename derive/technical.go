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

// Package derive computes the second-tier analytics from previously
// ingested raw data: technical indicators, dividend yields, fundamental
// ratios and portfolio valuations. Everything here is a streaming reduction
// over store reads; results go back through the same idempotent upsert
// path, so derivations re-run to convergence. NaN and ±Inf never reach the
// store: they are replaced by NULL at row construction.
package derive

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/store"
)

// compositeIndexName is the reference index for beta.
const compositeIndexName = "Composite Index"

// Deriver runs all derivation stages against the store.
type Deriver struct {
	Library *store.Library
}

// Technical recomputes SMA(20), SMA(200), the 30-day ADTV, the 52-week low
// and TTM beta for every symbol, merging them into the scraped technical
// rows.
func (deriver *Deriver) Technical(ctx context.Context) error {
	scraped, err := deriver.Library.TechnicalSummaries(ctx)
	if err != nil {
		return err
	}

	symbols, err := deriver.Library.Symbols(ctx)
	if err != nil {
		return err
	}

	indexChanges, err := deriver.indexDailyChanges(ctx)
	if err != nil {
		return err
	}

	var rows []data.Row
	for _, symbol := range symbols {
		points, err := deriver.Library.TrailingCloses(ctx, symbol, 365)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("skipping symbol technicals")
			continue
		}

		if len(points) == 0 {
			continue
		}

		summary, ok := scraped[symbol]
		if !ok {
			summary = &data.TechnicalSummary{Symbol: symbol}
		}

		closes := make([]float64, len(points))
		volumes := make([]float64, len(points))
		for idx, point := range points {
			closes[idx], _ = point.ClosePrice.Decimal.Float64()
			volumes[idx] = float64(point.Volume)
		}

		summary.SMA20 = data.NullDecimalFromFloat(mean(head(closes, 20)))
		summary.SMA200 = data.NullDecimalFromFloat(mean(head(closes, 200)))
		summary.ADTV30 = data.NullDecimalFromFloat(mean(head(volumes, 30)))
		summary.Low52W = data.NullDecimalFromFloat(lowest(closes))

		if !summary.LastClose.Valid {
			summary.LastClose = points[0].ClosePrice
		}

		summary.Beta = data.NullDecimalFromFloat(beta(points, indexChanges))
		rows = append(rows, summary)
	}

	written, err := deriver.Library.Upsert(ctx, rows)
	if err != nil {
		return err
	}

	log.Info().Int64("Rows", written).Msg("technical derivations written")
	return nil
}

// indexDailyChanges returns date → composite daily percent change for the
// trailing year.
func (deriver *Deriver) indexDailyChanges(ctx context.Context) (map[string]float64, error) {
	since := time.Now().AddDate(-1, 0, -1)
	points, err := deriver.Library.TrailingIndexValues(ctx, compositeIndexName, since)
	if err != nil {
		return nil, err
	}

	// Points arrive newest first; walk oldest first to difference them.
	changes := make(map[string]float64, len(points))
	for idx := len(points) - 2; idx >= 0; idx-- {
		current, _ := points[idx].IndexValue.Decimal.Float64()
		previous, _ := points[idx+1].IndexValue.Decimal.Float64()
		if previous == 0 {
			continue
		}
		changes[points[idx].Date.Format("2006-01-02")] = (current - previous) / previous * 100
	}

	return changes, nil
}

// beta computes cov(stock daily % change, index daily % change) divided by
// the index variance, over the days both series observed.
func beta(points []*store.ClosePoint, indexChanges map[string]float64) float64 {
	var stock, index []float64

	for idx := 0; idx < len(points)-1; idx++ {
		current, _ := points[idx].ClosePrice.Decimal.Float64()
		previous, _ := points[idx+1].ClosePrice.Decimal.Float64()
		if previous == 0 {
			continue
		}

		indexChange, ok := indexChanges[points[idx].Date.Format("2006-01-02")]
		if !ok {
			continue
		}

		stock = append(stock, (current-previous)/previous*100)
		index = append(index, indexChange)
	}

	return covariance(stock, index) / variance(index)
}

func head(values []float64, n int) []float64 {
	if len(values) < n {
		return nil
	}

	return values[:n]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

func lowest(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	low := values[0]
	for _, value := range values[1:] {
		if value < low {
			low = value
		}
	}

	return low
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}

	avg := mean(values)
	sum := 0.0
	for _, value := range values {
		sum += (value - avg) * (value - avg)
	}

	return sum / float64(len(values)-1)
}

// safeDiv yields NaN instead of panicking or returning ±Inf on a zero
// denominator, so the result maps to NULL at row construction.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return math.NaN()
	}

	return numerator / denominator
}

func covariance(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}

	meanX := mean(xs)
	meanY := mean(ys)
	sum := 0.0
	for idx := range xs {
		sum += (xs[idx] - meanX) * (ys[idx] - meanY)
	}

	return sum / float64(len(xs)-1)
}
