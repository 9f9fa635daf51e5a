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
package derive

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trinistats/ttsetl/store"
)

func TestMeanAndHead(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	if got := mean(values); !closeTo(got, 3) {
		t.Errorf("mean = %v, want 3", got)
	}
	if got := mean(head(values, 2)); !closeTo(got, 1.5) {
		t.Errorf("mean of head(2) = %v, want 1.5", got)
	}

	// Not enough history for the window: the average must be NULL, not
	// an average over fewer points.
	if head(values, 20) != nil {
		t.Error("head with too few values should be nil")
	}
	if !math.IsNaN(mean(nil)) {
		t.Error("mean of nothing should be NaN")
	}
}

func TestLowest(t *testing.T) {
	if got := lowest([]float64{3.5, 1.25, 9, 1.3}); !closeTo(got, 1.25) {
		t.Errorf("lowest = %v, want 1.25", got)
	}
	if !math.IsNaN(lowest(nil)) {
		t.Error("lowest of nothing should be NaN")
	}
}

func TestSafeDiv(t *testing.T) {
	if got := safeDiv(10, 4); !closeTo(got, 2.5) {
		t.Errorf("safeDiv = %v, want 2.5", got)
	}
	if !math.IsNaN(safeDiv(10, 0)) {
		t.Error("division by zero should be NaN")
	}
}

func TestVarianceAndCovariance(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}

	if got := variance(xs); !closeTo(got, 5.0/3.0) {
		t.Errorf("variance = %v, want 5/3", got)
	}
	if got := covariance(xs, ys); !closeTo(got, 10.0/3.0) {
		t.Errorf("covariance = %v, want 10/3", got)
	}
	if !math.IsNaN(covariance(xs, ys[:2])) {
		t.Error("mismatched series should be NaN")
	}
	if !math.IsNaN(variance([]float64{1})) {
		t.Error("variance of a single point should be NaN")
	}
}

func TestBeta(t *testing.T) {
	// Stock moves exactly twice the index every day: beta of 2.
	day := func(d int) time.Time {
		return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	point := func(d int, close float64) *store.ClosePoint {
		return &store.ClosePoint{
			Date:       day(d),
			ClosePrice: decimal.NullDecimal{Decimal: decimal.NewFromFloat(close), Valid: true},
		}
	}

	// Newest first, matching the trailing-closes query order. The stock
	// gains 20% then 10% while the index gains 10% then 5%.
	points := []*store.ClosePoint{
		point(4, 132), point(3, 120), point(2, 100),
	}
	indexChanges := map[string]float64{
		day(3).Format("2006-01-02"): 10,
		day(4).Format("2006-01-02"): 5,
	}

	if got := beta(points, indexChanges); !closeTo(got, 2) {
		t.Errorf("beta = %v, want 2", got)
	}
}

func TestBetaNoOverlap(t *testing.T) {
	points := []*store.ClosePoint{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			ClosePrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}},
		{Date: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
			ClosePrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}},
	}

	if got := beta(points, map[string]float64{}); !math.IsNaN(got) {
		t.Errorf("beta without index overlap = %v, want NaN", got)
	}
}
