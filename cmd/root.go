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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/trinistats/ttsetl/config"
	"github.com/trinistats/ttsetl/mail"
)

var cfgFile string

// errorBuffer collects error-level records for the end-of-run summary email.
var errorBuffer = &mail.ErrorBuffer{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ttsetl",
	Short: "ttsetl maintains a database of Trinidad & Tobago Stock Exchange data",
	Long: `ttsetl is a command line utility for building and maintaining a database
of Trinidad & Tobago Stock Exchange (TTSE) market data. It scrapes the
exchange website for listed equities, daily trading summaries, dividend
declarations, news and financial report PDFs, normalizes what it finds and
stores it with idempotent upserts, then derives technical indicators,
dividend yields, fundamental ratios and portfolio valuations from the raw
data.

Runs are resumable: the scrapers compute which trading dates are missing
from the database and fetch only those, so an interrupted run picks up
where it left off.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ttsetl.toml)")
	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string")
	if err := viper.BindPFlag("DBUrl", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}

	config.SetDefaults()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".ttsetl" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".ttsetl")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// initLogging sends log output to the console and a rotating file, and
// attaches the error buffer hook so failures can be emailed at run end.
func initLogging() {
	console := zerolog.ConsoleWriter{Out: os.Stderr}

	logDir := viper.GetString("LogDir")
	if logDir == "" {
		log.Logger = log.Output(console).Hook(errorBuffer)
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "ttsetl.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 10,
		MaxAge:     60, // days
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(console, rotating)).Hook(errorBuffer)
}
