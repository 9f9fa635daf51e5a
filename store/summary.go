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
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a markdown description of the library's contents.
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString("# TTSE data library\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBUrl))

	counts := []struct {
		label string
		query string
	}{
		{"Listed equities", "SELECT count(*) FROM listed_equities"},
		{"Daily summary rows", "SELECT count(*) FROM daily_stock_summary"},
		{"Index snapshots", "SELECT count(*) FROM historical_indices_info"},
		{"Dividend events", "SELECT count(*) FROM historical_dividend_info"},
		{"News items", "SELECT count(*) FROM stock_news_data"},
		{"Raw fundamental rows", "SELECT count(*) FROM raw_fundamental_data"},
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	for _, count := range counts {
		var n int64
		if err := conn.QueryRow(ctx, count.query).Scan(&n); err != nil {
			return "", err
		}
		builder.WriteString(p.Sprintf("  * %s: %d\n", count.label, n))
	}

	var lastRun time.Time
	if err := conn.QueryRow(ctx,
		`SELECT coalesce(max(end_time), '0001-01-01'::timestamp) FROM scrape_runs`).Scan(&lastRun); err != nil {
		return "", err
	}

	if lastRun.Equal(time.Time{}) {
		builder.WriteString("\nLast run: never\n")
	} else {
		builder.WriteString(fmt.Sprintf("\nLast run: %s (%s)\n",
			timeago.English.Format(lastRun), lastRun.Local().Format("2006-01-02 15:04")))
	}

	return builder.String(), nil
}
