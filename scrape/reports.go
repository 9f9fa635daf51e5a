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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/mail"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/tabular"
)

// downloadAnchorPattern matches the visible text of the anchor that links
// the actual PDF on a report detail page.
var downloadAnchorPattern = regexp.MustCompile(`(?i)click\s+here\s+to\s+download`)

// headingDatePattern finds a release date inside a detail-page heading.
var headingDatePattern = regexp.MustCompile(`(\d{1,2} \w+ \d{4}|\d{2}/\d{2}/\d{4})`)

// reportKinds maps news categories to the kind fragment used in download
// filenames.
var reportKinds = map[data.NewsCategory]string{
	data.CategoryAnnualReport:       "annual_report",
	data.CategoryAuditedStatement:   "audited_statement",
	data.CategoryQuarterlyStatement: "quarterly_statement",
}

// Reports downloads financial report PDFs. The deterministic filename
// <symbol>_<kind>_<YYYY-MM-DD>.pdf is the idempotence key: existing files
// are never re-downloaded, which survives process crashes without any
// database coordination.
type Reports struct {
	deps *Deps
}

// NewReports builds the fundamental-reports scraper.
func NewReports(deps *Deps) *Reports {
	return &Reports{deps: deps}
}

// Run walks the report categories for every symbol and downloads any PDF
// not already on disk.
func (scraper *Reports) Run(ctx context.Context) (*data.RunSummary, error) {
	start := time.Now()
	tally := &Tally{}

	equities, err := scraper.deps.Library.Equities(ctx)
	if err != nil {
		return tally.Summary(scraper.deps, "reports", start, 0, err), err
	}

	var downloaded int64
	for _, equity := range equities {
		if equity.NewsID == 0 {
			tally.Count(ItemSkipped)
			continue
		}

		n, err := scraper.symbolReports(ctx, equity)
		downloaded += n
		if err != nil {
			log.Warn().Err(err).Str("Symbol", equity.Symbol).Msg("skipping symbol reports")
			tally.Count(ItemFailed)
			continue
		}
		tally.Count(ItemOk)
	}

	log.Info().Int64("Downloaded", downloaded).Msg("report download pass complete")
	return tally.Summary(scraper.deps, "reports", start, downloaded, nil), nil
}

func (scraper *Reports) symbolReports(ctx context.Context, equity *data.Equity) (int64, error) {
	var downloaded int64
	now := time.Now()

	for category, kind := range reportKinds {
		floor := scraper.deps.Settings.FundamentalsStartAnnual
		if category == data.CategoryQuarterlyStatement {
			floor = scraper.deps.Settings.FundamentalsStartQuarterly
		}

		categoryID := data.NewsCategoryIDs[category]

		for pageNum := 1; ; pageNum++ {
			links, err := scraper.listingLinks(ctx, equity.NewsID, categoryID, floor, now, pageNum)
			if err != nil {
				return downloaded, err
			}

			if len(links) == 0 {
				break
			}

			for _, link := range links {
				ok, err := scraper.downloadReport(ctx, equity.Symbol, kind, link)
				if err != nil {
					log.Warn().Err(err).Str("Symbol", equity.Symbol).Str("Listing", link).Msg("skipping report")
					continue
				}
				if ok {
					downloaded++
				}
			}
		}
	}

	return downloaded, nil
}

func (scraper *Reports) listingLinks(ctx context.Context, newsID int64, categoryID int, from, to time.Time, pageNum int) ([]string, error) {
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
		if href, exists := anchor.Attr("href"); exists && href != "" && !strings.HasPrefix(href, "#") {
			links = append(links, href)
		}
	})

	return links, nil
}

// downloadReport resolves the PDF behind one listing link and stores it
// under the deterministic filename. Returns true when a new file was
// written.
func (scraper *Reports) downloadReport(ctx context.Context, symbol, kind, listingURL string) (bool, error) {
	body, err := scraper.deps.Client.Text(ctx, listingURL)
	if err != nil {
		return false, err
	}

	page, err := tabular.ParseHTML(body)
	if err != nil {
		return false, err
	}

	pdfURL := ""
	page.Doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if downloadAnchorPattern.MatchString(anchor.Text()) {
			pdfURL, _ = anchor.Attr("href")
			return false
		}
		return true
	})

	if pdfURL == "" {
		return false, &tabular.ShapeError{Frame: -1, Detail: "no download anchor on report detail page"}
	}

	released, err := releaseDate(page)
	if err != nil {
		return false, err
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf", symbol, kind, released.Format("2006-01-02"))
	symbolDir := filepath.Join(scraper.deps.Settings.ReportDir, symbol)
	path := filepath.Join(symbolDir, filename)

	// Filename is the idempotence key.
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(symbolDir, 0o755); err != nil {
		return false, err
	}

	pdfBytes, err := scraper.deps.Client.Bytes(ctx, pdfURL)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return false, err
	}

	log.Info().Str("File", filename).Msg("downloaded report")
	return true, nil
}

// releaseDate extracts the report's release date from the detail page's
// heading.
func releaseDate(page *tabular.Page) (time.Time, error) {
	var found time.Time
	var parseErr error = &normalize.ValueParseError{Value: "", Reason: "no dated heading on detail page"}

	page.Doc.Find("h1, h2, h3, h4, h5").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		match := headingDatePattern.FindString(heading.Text())
		if match == "" {
			return true
		}

		for _, layout := range []string{"2 January 2006", "02/01/2006"} {
			if date, err := normalize.ToDate(match, layout); err == nil {
				found = date
				parseErr = nil
				return false
			}
		}
		return true
	})

	return found, parseErr
}

// Outstanding returns the downloaded report filenames that have not been
// transcribed into the raw fundamentals table yet, sorted for stable
// emails.
func (scraper *Reports) Outstanding(ctx context.Context) ([]string, error) {
	referenced, err := scraper.deps.Library.ReferencedReports(ctx)
	if err != nil {
		return nil, err
	}

	var outstanding []string
	err = filepath.WalkDir(scraper.deps.Settings.ReportDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			return nil
		}

		if !referenced[entry.Name()] {
			outstanding = append(outstanding, entry.Name())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(outstanding)
	return outstanding, nil
}

// NotifyOutstanding emails the operator the set of reports awaiting
// transcription.
func (scraper *Reports) NotifyOutstanding(ctx context.Context, mailer *mail.Mailer) error {
	outstanding, err := scraper.Outstanding(ctx)
	if err != nil {
		return err
	}

	if len(outstanding) == 0 {
		log.Info().Msg("no outstanding reports")
		return nil
	}

	body := fmt.Sprintf("%d report(s) downloaded but not yet transcribed:\n\n%s\n",
		len(outstanding), strings.Join(outstanding, "\n"))
	return mailer.Send("Outstanding fundamental reports", body)
}
