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
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trinistats/ttsetl/data"
	"github.com/trinistats/ttsetl/derive"
	"github.com/trinistats/ttsetl/store"
)

const importDateLayout = "2006-01-02"

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <transactions.csv>",
	Short: "Import portfolio transactions from a CSV file",
	Long: `The import sub-command loads portfolio buy and sell transactions from a
CSV file with columns user_id, symbol, date, transaction_type, quantity and
price. Each row gets a deterministic id derived from its content, so
importing the same file twice does not duplicate transactions. Portfolio
summaries are recomputed afterwards.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		file, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not open transactions file")
		}
		defer file.Close()

		var transactions []*data.PortfolioTransaction
		if err := gocsv.Unmarshal(file, &transactions); err != nil {
			log.Fatal().Err(err).Msg("could not parse transactions file")
		}

		rows := make([]data.Row, 0, len(transactions))
		for idx, transaction := range transactions {
			if err := prepareTransaction(transaction); err != nil {
				log.Fatal().Err(err).Int("Line", idx+2).Msg("invalid transaction row")
			}
			rows = append(rows, transaction)
		}

		library, err := store.NewFromDB(ctx, viper.GetString("DBUrl"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer library.Close()

		written, err := library.Upsert(ctx, rows)
		if err != nil {
			log.Fatal().Err(err).Msg("could not save transactions")
		}
		log.Info().Int64("Rows", written).Msg("transactions imported")

		deriver := &derive.Deriver{Library: library}
		if err := deriver.Portfolio(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not recompute portfolio summaries")
		}
	},
}

// prepareTransaction parses the date column and assigns the content-derived
// id used as the idempotence key.
func prepareTransaction(transaction *data.PortfolioTransaction) error {
	date, err := time.Parse(importDateLayout, transaction.DateText)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", transaction.DateText, err)
	}
	transaction.Date = date

	switch transaction.Type {
	case data.TransactionBuy, data.TransactionSell:
	default:
		return fmt.Errorf("bad transaction type %q", transaction.Type)
	}

	if transaction.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", transaction.Quantity)
	}

	fingerprint := fmt.Sprintf("%s|%s|%s|%s|%d|%s", transaction.UserID,
		transaction.Symbol, transaction.DateText, transaction.Type,
		transaction.Quantity, transaction.Price)
	transaction.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fingerprint))

	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
