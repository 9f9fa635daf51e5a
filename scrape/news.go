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
package scrape

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
	"golang.org/x/sync/errgroup"
)

// newsDateLayout matches article dates on detail pages.
const newsDateLayout = "02/01/2006"

// News walks the paginated news archive for every symbol in a date window.
// Symbols are sharded across a fixed number of in-process workers, each
// owning a disjoint subset.
type News struct {
	deps *Deps
}

// NewNews builds the news scraper.
func NewNews(deps *Deps) *News {
	return &News{deps: deps}
}

// Run scrapes articles in [from, to] for all symbols and upserts the
// merged results.
func (scraper *News) Run(ctx context.Context, from, to time.Time) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	equities, err := scraper.deps.Library.Equities(ctx)
	if err != nil {
		return tally.Summary(scraper.deps, "news", start, 0, err), err
	}

	workers := scraper.deps.Settings.NewsWorkers
	if workers < 1 {
		workers = 1
	}

	var (
		mu    sync.Mutex
		items []data.Row
	)

	group, groupCtx := errgroup.WithContext(ctx)

	// Round-robin sharding keeps the subsets disjoint.
	for workerIdx := 0; workerIdx < workers; workerIdx++ {
		workerIdx := workerIdx

		group.Go(func() error {
			for symbolIdx := workerIdx; symbolIdx < len(equities); symbolIdx += workers {
				equity := equities[symbolIdx]
				if equity.NewsID == 0 {
					mu.Lock()
					tally.Count(ItemSkipped)
					mu.Unlock()
					continue
				}

				symbolItems, err := scraper.symbolNews(groupCtx, equity, from, to)

				mu.Lock()
				if err != nil {
					log.Warn().Err(err).Str("Symbol", equity.Symbol).Msg("skipping symbol news")
					tally.Count(ItemFailed)
				} else {
					items = append(items, symbolItems...)
					tally.Count(ItemOk)
				}
				mu.Unlock()
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return tally.Summary(scraper.deps, "news", start, 0, err), err
	}

	rows, err := scraper.deps.Library.Upsert(ctx, items)
	if err != nil {
		return tally.Summary(scraper.deps, "news", start, rows, err), err
	}

	log.Info().Int64("Rows", rows).Msg("news scraped")
	return tally.Summary(scraper.deps, "news", start, rows, nil), nil
}

// symbolNews pages through one symbol's articles until a page comes back
// empty.
func (scraper *News) symbolNews(ctx context.Context, equity *data.Equity, from, to time.Time) ([]data.Row, error) {
	var items []data.Row

	for _, category := range []data.NewsCategory{data.CategoryAnnualReport, data.CategoryAuditedStatement, data.CategoryQuarterlyStatement, data.CategoryArticle} {
		categoryID := data.NewsCategoryIDs[category]

		for pageNum := 1; ; pageNum++ {
			links, err := scraper.articleLinks(ctx, equity.NewsID, categoryID, from, to, pageNum)
			if err != nil {
				return nil, err
			}

			if len(links) == 0 {
				break
			}

			for _, link := range links {
				item, err := scraper.articleDetail(ctx, equity.Symbol, category, link)
				if err != nil {
					log.Warn().Err(err).Str("Symbol", equity.Symbol).Str("Article", link).Msg("skipping article")
					continue
				}
				items = append(items, item)
			}
		}
	}

	return items, nil
}

// articleLinks returns the detail-page links on one listing page.
func (scraper *News) articleLinks(ctx context.Context, newsID int64, categoryID int, from, to time.Time, pageNum int) ([]string, error) {
	body, err := scraper.deps.Client.Text(ctx, scraper.deps.newsURL(newsID, categoryID, from, to, pageNum))
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	var links []string
	page.Doc.Find("article a, .news-item a, .elementor-post__title a").Each(func(_ int, anchor *goquery.Selection) {
		href, exists := anchor.Attr("href")
		if exists && href != "" && !strings.HasPrefix(href, "#") {
			links = append(links, href)
		}
	})

	return links, nil
}

// articleDetail parses one article's detail page with targeted selector
// lookups.
func (scraper *News) articleDetail(ctx context.Context, symbol string, category data.NewsCategory, link string) (*data.NewsItem, error) {
	body, err := scraper.deps.Client.Text(ctx, link)
	if err != nil {
		return nil, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(page.Doc.Find("h1.entry-title, h1").First().Text())

	dateText := strings.TrimSpace(page.Doc.Find(".entry-date, .post-date, time").First().Text())
	date, err := normalize.ToDate(dateText, newsDateLayout)
	if err != nil {
		return nil, err
	}

	download := ""
	page.Doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(anchor.Text()), "download") {
			download, _ = anchor.Attr("href")
			return false
		}
		return true
	})

	return &data.NewsItem{
		Symbol:   symbol,
		Date:     date,
		Title:    title,
		Category: category,
		Link:     download,
	}, nil
}
