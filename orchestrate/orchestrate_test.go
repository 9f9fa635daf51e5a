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
package orchestrate

import (
	"testing"
	"time"

	"github.com/trinistats/ttsetl/config"
)

func TestStartDate(t *testing.T) {
	floor := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)
	runner := &Runner{Settings: &config.Settings{HistoricalStart: floor}}

	if got := runner.startDate(ModeFullHistory); !got.Equal(floor) {
		t.Errorf("full-history start = %v, want %v", got, floor)
	}

	now := time.Now()
	if got := runner.startDate(ModeCatchup); now.Sub(got) < 27*24*time.Hour {
		t.Errorf("catchup start = %v, want about a month back", got)
	}

	// End-of-day and intraday both reach back one day; intraday uses this
	// window for its short news pass.
	for _, mode := range []Mode{ModeEndOfDay, ModeIntraday} {
		got := runner.startDate(mode)
		back := now.Sub(got)
		if back < 23*time.Hour || back > 25*time.Hour {
			t.Errorf("%s start = %v, want one day back", mode, got)
		}
	}
}
