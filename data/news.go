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

import "time"

// NewsCategory is the upstream's article classification.
type NewsCategory string

const (
	CategoryAnnualReport       NewsCategory = "annual_reports"
	CategoryAuditedStatement   NewsCategory = "annual_statements"
	CategoryQuarterlyStatement NewsCategory = "quarterly_statements"
	CategoryArticle            NewsCategory = "articles"
)

// NewsCategoryIDs maps categories to the upstream's numeric query ids.
var NewsCategoryIDs = map[NewsCategory]int{
	CategoryAnnualReport:       56,
	CategoryArticle:            57,
	CategoryAuditedStatement:   58,
	CategoryQuarterlyStatement: 59,
}

// NewsItem is one published article or statement for a symbol.
type NewsItem struct {
	Symbol   string       `db:"symbol"`
	Date     time.Time    `db:"date"`
	Title    string       `db:"title"`
	Category NewsCategory `db:"category"`
	Link     string       `db:"link"`
}

func (item *NewsItem) Table() string { return "stock_news_data" }

func (item *NewsItem) KeyColumns() []string { return []string{"symbol", "date", "title"} }

func (item *NewsItem) Columns() []string {
	return []string{"symbol", "date", "title", "category", "link"}
}

func (item *NewsItem) Values() []any {
	return []any{item.Symbol, item.Date, item.Title, string(item.Category), item.Link}
}
