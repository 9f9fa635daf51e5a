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
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/trinistats/ttsetl/tabular"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe <report.pdf>",
	Short: "Extract candidate tables from a report PDF",
	Long: `The transcribe sub-command extracts the text of a downloaded financial
report PDF as tables, one frame per page, to assist an analyst entering
fundamental data. Extraction is heuristic; the analyst remains responsible
for the numbers that reach the database.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		frames, err := tabular.ParsePDF(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not parse PDF")
		}

		for idx, frame := range frames {
			if frame.Empty() {
				continue
			}
			fmt.Printf("== page %d ==\n", idx+1)
			for _, row := range frame.Rows {
				fmt.Println(strings.Join(row, " | "))
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}
