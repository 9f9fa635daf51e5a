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
package config

import (
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Settings carries every tunable the pipeline needs. Scrapers receive a
// *Settings at construction time instead of reaching into package globals;
// the currency override sets are data loaded from the config file, with the
// exchange's current cross-listings as defaults.
type Settings struct {
	// DBUrl is the PostgreSQL connection string for the data library.
	DBUrl string

	// BaseURL is the stock exchange website root, without trailing slash.
	BaseURL string

	// CurrencyAPIURL returns TTD conversion rates as JSON.
	CurrencyAPIURL string
	CurrencyAPIKey string

	// HTTPTimeout bounds a single fetch. Retry policy belongs to callers.
	HTTPTimeout time.Duration

	// RequestsPerMinute throttles fetches against the upstream site.
	RequestsPerMinute int

	// HistoricalStart is the floor for full-history runs.
	HistoricalStart time.Time

	// FundamentalsStartAnnual and FundamentalsStartQuarterly bound the news
	// archive walk when locating report PDFs.
	FundamentalsStartAnnual    time.Time
	FundamentalsStartQuarterly time.Time

	// NewsWorkers is the number of goroutines news scraping fans out to.
	NewsWorkers int

	// Workers sizes the coarse-grained task pool. Defaults to NumCPU.
	Workers int

	// ReportDir is where downloaded financial report PDFs are stored,
	// one subdirectory per symbol.
	ReportDir string

	// LogDir holds the rotating log files.
	LogDir string

	// USDSymbols lists equities that trade in USD; their prices are
	// converted before TTD-denominated comparisons.
	USDSymbols []string

	// USDDividendSymbols, JMDDividendSymbols and BBDDividendSymbols list
	// equities that declare dividends in a foreign currency.
	USDDividendSymbols []string
	JMDDividendSymbols []string
	BBDDividendSymbols []string

	// USDFundamentalSymbols, JMDFundamentalSymbols and
	// BBDFundamentalSymbols list equities whose filings report in a
	// foreign currency.
	USDFundamentalSymbols []string
	JMDFundamentalSymbols []string
	BBDFundamentalSymbols []string

	// PercentOfParSymbols declare dividends as a percentage of par value.
	PercentOfParSymbols []string

	// ParValue is the par used to convert percent-of-par dividends.
	ParValue float64

	// Sendmail is the path of the local sendmail binary.
	Sendmail string

	// OperatorEmail receives run summaries and outstanding-report notices.
	OperatorEmail string
	SenderEmail   string
}

// SetDefaults registers defaults for every setting so a bare config file
// still produces a runnable pipeline.
func SetDefaults() {
	viper.SetDefault("base_url", "https://www.stockex.co.tt")
	viper.SetDefault("currency_api_url", "https://api.currencyscoop.com/v1/latest")
	viper.SetDefault("http_timeout", "30s")
	viper.SetDefault("requests_per_minute", 120)
	viper.SetDefault("historical_start", "2010-01-01")
	viper.SetDefault("fundamentals_start_annual", "2016-01-01")
	viper.SetDefault("fundamentals_start_quarterly", "2020-01-01")
	viper.SetDefault("news_workers", 5)
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("report_dir", "./financial_reports")
	viper.SetDefault("log_dir", "./logs")
	viper.SetDefault("usd_symbols", []string{"MPCCEL"})
	viper.SetDefault("usd_dividend_symbols", []string{"SFC", "MPCCEL", "FCI", "GMLP", "CPFV"})
	viper.SetDefault("jmd_dividend_symbols", []string{"GKC", "JMMBGL", "NCBFG"})
	viper.SetDefault("bbd_dividend_symbols", []string{"CPFD"})
	viper.SetDefault("usd_fundamental_symbols", []string{"SFC", "MPCCEL"})
	viper.SetDefault("jmd_fundamental_symbols", []string{"GKC", "JMMBGL", "NCBFG"})
	viper.SetDefault("bbd_fundamental_symbols", []string{"CPFD"})
	viper.SetDefault("percent_of_par_symbols", []string{"PLD"})
	viper.SetDefault("par_value", 50.0)
	viper.SetDefault("sendmail", "/usr/sbin/sendmail")
}

// FromViper materializes a Settings from the loaded configuration.
func FromViper() (*Settings, error) {
	settings := &Settings{
		DBUrl:                 viper.GetString("DBUrl"),
		BaseURL:               viper.GetString("base_url"),
		CurrencyAPIURL:        viper.GetString("currency_api_url"),
		CurrencyAPIKey:        viper.GetString("currency_api_key"),
		HTTPTimeout:           viper.GetDuration("http_timeout"),
		RequestsPerMinute:     viper.GetInt("requests_per_minute"),
		NewsWorkers:           viper.GetInt("news_workers"),
		Workers:               viper.GetInt("workers"),
		ReportDir:             viper.GetString("report_dir"),
		LogDir:                viper.GetString("log_dir"),
		USDSymbols:            viper.GetStringSlice("usd_symbols"),
		USDDividendSymbols:    viper.GetStringSlice("usd_dividend_symbols"),
		JMDDividendSymbols:    viper.GetStringSlice("jmd_dividend_symbols"),
		BBDDividendSymbols:    viper.GetStringSlice("bbd_dividend_symbols"),
		USDFundamentalSymbols: viper.GetStringSlice("usd_fundamental_symbols"),
		JMDFundamentalSymbols: viper.GetStringSlice("jmd_fundamental_symbols"),
		BBDFundamentalSymbols: viper.GetStringSlice("bbd_fundamental_symbols"),
		PercentOfParSymbols:   viper.GetStringSlice("percent_of_par_symbols"),
		ParValue:              viper.GetFloat64("par_value"),
		Sendmail:              viper.GetString("sendmail"),
		OperatorEmail:         viper.GetString("operator_email"),
		SenderEmail:           viper.GetString("sender_email"),
	}

	var err error
	if settings.HistoricalStart, err = time.Parse("2006-01-02", viper.GetString("historical_start")); err != nil {
		return nil, err
	}

	if settings.FundamentalsStartAnnual, err = time.Parse("2006-01-02", viper.GetString("fundamentals_start_annual")); err != nil {
		return nil, err
	}

	if settings.FundamentalsStartQuarterly, err = time.Parse("2006-01-02", viper.GetString("fundamentals_start_quarterly")); err != nil {
		return nil, err
	}

	if settings.Workers < 1 {
		settings.Workers = runtime.NumCPU()
	}

	return settings, nil
}
