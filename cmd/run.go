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
package cmd

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/mail"
	"github.com/trinistats/ttsetl/orchestrate"
	"github.com/trinistats/ttsetl/store"
)

var errExactlyOneMode = errors.New("exactly one of --full-history, --catchup, --end-of-day or --intraday must be given")

var (
	fullHistory bool
	catchup     bool
	endOfDay    bool
	intraday    bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scraping pipeline",
	Long: `The run sub-command executes the scraping pipeline and the derivations
that follow it. Exactly one mode flag must be given:

  --full-history   rebuild from the configured historical start date
  --catchup        fill the gaps from the trailing month
  --end-of-day     the nightly run covering the last trading day
  --intraday       poll the live ticker and recent news

Daily summary scraping is gap-driven in every mode: only trading dates
missing from the database are fetched.`,
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := selectedMode()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid mode flags")
		}

		ctx := context.Background()

		settings, err := config.FromViper()
		if err != nil {
			log.Fatal().Err(err).Msg("could not load settings")
		}

		library, err := store.NewFromDB(ctx, settings.DBUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer library.Close()

		runner := &orchestrate.Runner{
			Settings: settings,
			Library:  library,
			Mailer: &mail.Mailer{
				SendmailPath: settings.Sendmail,
				From:         settings.SenderEmail,
				To:           settings.OperatorEmail,
			},
			Errors: errorBuffer,
		}

		if err := runner.Run(ctx, mode); err != nil {
			log.Fatal().Err(err).Msg("pipeline run could not start")
		}
	},
}

func selectedMode() (orchestrate.Mode, error) {
	var modes []orchestrate.Mode
	if fullHistory {
		modes = append(modes, orchestrate.ModeFullHistory)
	}
	if catchup {
		modes = append(modes, orchestrate.ModeCatchup)
	}
	if endOfDay {
		modes = append(modes, orchestrate.ModeEndOfDay)
	}
	if intraday {
		modes = append(modes, orchestrate.ModeIntraday)
	}

	if len(modes) != 1 {
		return "", errExactlyOneMode
	}

	return modes[0], nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&fullHistory, "full-history", false, "rebuild from the historical start date")
	runCmd.Flags().BoolVar(&catchup, "catchup", false, "fill gaps from the trailing month")
	runCmd.Flags().BoolVar(&endOfDay, "end-of-day", false, "nightly run for the last trading day")
	runCmd.Flags().BoolVar(&intraday, "intraday", false, "poll the live ticker")

	// Original spellings kept hidden for compatibility with existing
	// cron entries.
	runCmd.Flags().BoolVar(&fullHistory, "full_history", false, "")
	runCmd.Flags().BoolVar(&endOfDay, "end_of_day_update", false, "")
	runCmd.Flags().BoolVar(&intraday, "intradaily_update", false, "")
	for _, alias := range []string{"full_history", "end_of_day_update", "intradaily_update"} {
		if err := runCmd.Flags().MarkHidden(alias); err != nil {
			log.Panic().Err(err).Msg("MarkHidden failed")
		}
	}
}
