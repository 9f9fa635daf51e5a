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
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/fetch"
	"github.com/trinistats/ttsetl/mail"
	"github.com/trinistats/ttsetl/scrape"
	"github.com/trinistats/ttsetl/store"
)

var outstandingEmail bool

// outstandingCmd represents the outstanding command
var outstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "List downloaded report PDFs not yet transcribed",
	Long: `The outstanding sub-command compares the report PDFs on disk against the
reports referenced by transcribed fundamental data and lists the ones still
waiting for an analyst. With --email the list is sent to the operator
instead of printed.`,
	Run: func(cmd *cobra.Command, args []string) {
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

		deps := &scrape.Deps{
			Settings: settings,
			Client:   fetch.New(settings.HTTPTimeout, settings.RequestsPerMinute),
			Library:  library,
			RunID:    uuid.New(),
		}

		if outstandingEmail {
			mailer := &mail.Mailer{
				SendmailPath: settings.Sendmail,
				From:         settings.SenderEmail,
				To:           settings.OperatorEmail,
			}
			if err := scrape.NewReports(deps).NotifyOutstanding(ctx, mailer); err != nil {
				log.Fatal().Err(err).Msg("could not send outstanding report notice")
			}
			return
		}

		outstanding, err := scrape.NewReports(deps).Outstanding(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list outstanding reports")
		}

		for _, name := range outstanding {
			fmt.Println(name)
		}
		log.Info().Int("Outstanding", len(outstanding)).Msg("reports awaiting transcription")
	},
}

func init() {
	rootCmd.AddCommand(outstandingCmd)
	outstandingCmd.Flags().BoolVar(&outstandingEmail, "email", false, "email the list to the operator")
}
