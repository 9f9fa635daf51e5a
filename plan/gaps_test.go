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
package plan

import (
	"testing"
	"time"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestGapsSkipsCoveredQuarter(t *testing.T) {
	// Every weekday of Q1 2021 is already present.
	existing := map[string]bool{}
	for date := day(2021, time.January, 1); date.Before(day(2021, time.April, 1)); date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		existing[date.Format("2006-01-02")] = true
	}

	end := day(2021, time.April, 15)
	missing := gaps(day(2021, time.January, 1), end, existing)

	if len(missing) == 0 {
		t.Fatal("expected missing dates in April")
	}
	if !missing[0].Equal(day(2021, time.April, 1)) {
		t.Errorf("first gap = %v, want 2021-04-01", missing[0])
	}
	for _, date := range missing {
		if date.Before(day(2021, time.April, 1)) {
			t.Errorf("covered date %v should not be a gap", date)
		}
		if !date.Before(end) {
			t.Errorf("date %v is outside [start, end)", date)
		}
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			t.Errorf("weekend date %v in gap list", date)
		}
	}
}

func TestGapsEmptyWindow(t *testing.T) {
	if got := gaps(day(2021, time.April, 1), day(2021, time.April, 1), nil); len(got) != 0 {
		t.Errorf("empty window produced %d dates", len(got))
	}
}

func TestShard(t *testing.T) {
	var dates []time.Time
	for i := 0; i < 10; i++ {
		dates = append(dates, day(2021, time.April, 1+i))
	}

	shards := Shard(dates, 3)
	if len(shards) != 3 {
		t.Fatalf("got %d shards, want 3", len(shards))
	}

	total := 0
	previous := time.Time{}
	for _, shard := range shards {
		total += len(shard)
		for _, date := range shard {
			if !date.After(previous) {
				t.Errorf("dates not contiguous ascending at %v", date)
			}
			previous = date
		}
	}
	if total != len(dates) {
		t.Errorf("shards cover %d dates, want %d", total, len(dates))
	}

	sizes := []int{len(shards[0]), len(shards[1]), len(shards[2])}
	if sizes[0] != 4 || sizes[1] != 3 || sizes[2] != 3 {
		t.Errorf("shard sizes = %v, want [4 3 3]", sizes)
	}
}

func TestShardFewerDatesThanShards(t *testing.T) {
	dates := []time.Time{day(2021, time.April, 1)}
	shards := Shard(dates, 8)
	if len(shards) != 1 {
		t.Errorf("got %d shards, want 1", len(shards))
	}
}

func TestShardEmpty(t *testing.T) {
	if got := Shard(nil, 4); got != nil {
		t.Errorf("Shard(nil) = %v, want nil", got)
	}
}
