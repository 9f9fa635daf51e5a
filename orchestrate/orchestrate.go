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

// Package orchestrate sequences the scraper stages and derivations into a
// single pipeline run. Stages run on a goroutine pool; one failing scraper
// is logged and counted but never aborts its siblings. Exactly one run may
// be active on a host at a time, enforced with a pid file.
package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/derive"
	"github.com/trinistats/ttsetl/fetch"
	"github.com/trinistats/ttsetl/fx"
	"github.com/trinistats/ttsetl/mail"
	"github.com/trinistats/ttsetl/normalize"
	"github.com/trinistats/ttsetl/plan"
	"github.com/trinistats/ttsetl/scrape"
	"github.com/trinistats/ttsetl/store"
)

// Mode selects how far back a pipeline run reaches.
type Mode string

const (
	// ModeFullHistory rebuilds everything from the configured start date.
	ModeFullHistory Mode = "full-history"

	// ModeCatchup covers the trailing month, for resuming after downtime.
	ModeCatchup Mode = "catchup"

	// ModeEndOfDay is the nightly run covering the last trading day.
	ModeEndOfDay Mode = "end-of-day"

	// ModeIntraday polls the live ticker and a short news window.
	ModeIntraday Mode = "intraday"
)

const pidFileName = "ttsetl.pid"

// Runner wires the scrapers and derivations for one pipeline invocation.
type Runner struct {
	Settings *config.Settings
	Library  *store.Library
	Mailer   *mail.Mailer
	Errors   *mail.ErrorBuffer
}

// Run executes the pipeline in the given mode. It returns an error only
// for conditions that prevent the run from starting at all; individual
// scraper failures are recorded in scrape_runs and the summary email.
func (runner *Runner) Run(ctx context.Context, mode Mode) error {
	release, err := acquirePidFile()
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	runID := uuid.New()
	log.Info().Str("RunID", runID.String()).Str("Mode", string(mode)).Msg("pipeline run starting")

	deps := &scrape.Deps{
		Settings: runner.Settings,
		Client:   fetch.New(runner.Settings.HTTPTimeout, runner.Settings.RequestsPerMinute),
		Library:  runner.Library,
		Currency: runner.currencyOverrides(),
		Rates:    fx.New(runner.Settings.CurrencyAPIURL, runner.Settings.CurrencyAPIKey),
		RunID:    runID,
	}

	if err := deps.Rates.Load(ctx, "USD", "JMD", "BBD"); err != nil {
		// Derivations that need a missing rate skip the affected rows.
		log.Warn().Err(err).Msg("currency rates unavailable")
	}

	var summaries []*data.RunSummary
	if mode == ModeIntraday {
		summaries = runner.runIntraday(ctx, deps)
	} else {
		summaries = runner.runBatch(ctx, deps, mode)
	}

	rows := make([]data.Row, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, summary)
	}
	if _, err := runner.Library.Upsert(ctx, rows); err != nil {
		log.Error().Err(err).Msg("could not record run summaries")
	}

	elapsed := durafmt.Parse(time.Since(start)).LimitFirstN(2)
	log.Info().Str("RunID", runID.String()).Str("Elapsed", elapsed.String()).
		Msg("pipeline run finished")

	if runner.Errors != nil && runner.Errors.Len() > 0 {
		label := fmt.Sprintf("%s run %s", mode, runID)
		if err := runner.Errors.Flush(runner.Mailer, label); err != nil {
			log.Warn().Err(err).Msg("could not email run errors")
		}
	}

	return nil
}

// runIntraday covers the live ticker plus a short news window. No
// derivations; those wait for the nightly run.
func (runner *Runner) runIntraday(ctx context.Context, deps *scrape.Deps) []*data.RunSummary {
	collect := newCollector()
	collect.stage("intraday", func() (*data.RunSummary, error) {
		return scrape.NewIntraday(deps).Run(ctx)
	})
	collect.stage("news", func() (*data.RunSummary, error) {
		return scrape.NewNews(deps).Run(ctx, runner.startDate(ModeIntraday), time.Now())
	})
	return collect.summaries
}

// runBatch runs the full stage graph. Listing and dividend scrapes have no
// ordering dependency and run together; daily summaries wait for the gap
// plan; derivations run last because they read what the scrapers wrote.
func (runner *Runner) runBatch(ctx context.Context, deps *scrape.Deps, mode Mode) []*data.RunSummary {
	start := runner.startDate(mode)
	collect := newCollector()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runner.Settings.Workers)

	group.Go(func() error {
		collect.stage("equities", func() (*data.RunSummary, error) {
			return scrape.NewEquities(deps).Run(groupCtx)
		})
		return nil
	})
	group.Go(func() error {
		collect.stage("dividends", func() (*data.RunSummary, error) {
			return scrape.NewDividends(deps).Run(groupCtx)
		})
		return nil
	})
	if mode == ModeFullHistory {
		group.Go(func() error {
			collect.stage("index-history", func() (*data.RunSummary, error) {
				return scrape.NewIndexHistory(deps).Run(groupCtx)
			})
			return nil
		})
	}
	_ = group.Wait()

	planner := &plan.Planner{Library: runner.Library}
	dates, err := planner.MissingDates(ctx, start)
	if err != nil {
		log.Error().Err(err).Msg("could not plan missing dates")
		dates = nil
	}
	log.Info().Int("Dates", len(dates)).Time("Start", start).Msg("daily summary gap plan")

	group, groupCtx = errgroup.WithContext(ctx)
	group.SetLimit(runner.Settings.Workers)

	for shardIdx, shard := range plan.Shard(dates, runner.Settings.Workers) {
		shardIdx, shard := shardIdx, shard
		group.Go(func() error {
			collect.stage(fmt.Sprintf("daily-summary-%d", shardIdx), func() (*data.RunSummary, error) {
				return scrape.NewDailySummary(deps).RunDates(groupCtx, shard)
			})
			return nil
		})
	}
	group.Go(func() error {
		collect.stage("news", func() (*data.RunSummary, error) {
			return scrape.NewNews(deps).Run(groupCtx, start, time.Now())
		})
		return nil
	})
	group.Go(func() error {
		collect.stage("reports", func() (*data.RunSummary, error) {
			return scrape.NewReports(deps).Run(groupCtx)
		})
		return nil
	})
	_ = group.Wait()

	collect.stage("technical", func() (*data.RunSummary, error) {
		return scrape.NewTechnical(deps).Run(ctx)
	})

	runner.runDerivations(ctx, deps, collect)
	return collect.summaries
}

func (runner *Runner) runDerivations(ctx context.Context, deps *scrape.Deps, collect *collector) {
	deriver := &derive.Deriver{Library: runner.Library}

	derivations := []struct {
		stage string
		run   func() error
	}{
		{"derive-technical", func() error { return deriver.Technical(ctx) }},
		{"derive-yields", func() error { return deriver.Yields(ctx, deps.Rates, deps.Currency) }},
		{"derive-ratios", func() error { return deriver.Ratios(ctx, deps.Rates, deps.Currency) }},
		{"derive-portfolio", func() error { return deriver.Portfolio(ctx) }},
	}

	for _, derivation := range derivations {
		derivation := derivation
		collect.stage(derivation.stage, func() (*data.RunSummary, error) {
			start := time.Now()
			err := derivation.run()
			tally := &scrape.Tally{}
			if err != nil {
				tally.Failed = 1
			}
			return tally.Summary(deps, derivation.stage, start, 0, err), err
		})
	}
}

func (runner *Runner) startDate(mode Mode) time.Time {
	now := time.Now()
	switch mode {
	case ModeFullHistory:
		return runner.Settings.HistoricalStart
	case ModeCatchup:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

func (runner *Runner) currencyOverrides() *normalize.CurrencyOverrides {
	settings := runner.Settings
	return normalize.NewCurrencyOverrides(settings.USDSymbols,
		settings.USDDividendSymbols, settings.JMDDividendSymbols,
		settings.BBDDividendSymbols, settings.USDFundamentalSymbols,
		settings.JMDFundamentalSymbols, settings.BBDFundamentalSymbols)
}

// collector gathers stage summaries from concurrent goroutines and applies
// the failure isolation policy: log, count, carry on.
type collector struct {
	mutex     sync.Mutex
	summaries []*data.RunSummary
}

func newCollector() *collector {
	return &collector{}
}

func (collect *collector) stage(name string, run func() (*data.RunSummary, error)) {
	log.Info().Str("Stage", name).Msg("stage starting")
	summary, err := run()
	if err != nil {
		log.Error().Err(err).Str("Stage", name).Msg("stage failed")
	} else {
		log.Info().Str("Stage", name).Int64("Rows", summary.RowsWritten).Msg("stage finished")
	}

	if summary == nil {
		return
	}
	summary.Stage = name

	collect.mutex.Lock()
	defer collect.mutex.Unlock()
	collect.summaries = append(collect.summaries, summary)
}

// acquirePidFile takes the single-run lock, returning a release func. A
// stale file from a crashed run has to be removed by the operator; the
// error message names the path.
func acquirePidFile() (func(), error) {
	path := filepath.Join(os.TempDir(), pidFileName)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another run is in progress (pid file %s)", path)
		}
		return nil, err
	}

	fmt.Fprint(file, strconv.Itoa(os.Getpid()))
	file.Close()

	return func() {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("Path", path).Msg("could not remove pid file")
		}
	}, nil
}
