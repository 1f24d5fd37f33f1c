// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the content-engine CLI.
// It serves the HTTP API, runs generation from the command line, plans and
// runs resource batches, and exports the content database.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds keys from .secrets/ and .env, loaded at startup.
	loadedSecrets secrets.Set

	// logger is built in PersistentPreRunE from --verbose and --log-format.
	logger = zap.NewNop()
)

// rootCmd is the base command for the content-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "content-engine",
	Short: "AI-generated articles, lessons, and assessments for learners",
	Long: `content-engine generates educational content with chains of LLM agents.
Articles, lessons, and textbooks go through research, writing, and a
verification loop; assessments go through analysis, blueprinting, question
writing, auditing, and rubric scoring. Approved content is stored in SQLite
and served over HTTP.

A scheduler keeps every catalog subcategory stocked: subcategories with too
few resources are filled first, then stale ones are refreshed batch by batch.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := logging.New(verbose, logging.Format(format))
		if err != nil {
			return err
		}
		logger = l

		dirSecrets, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		envSecrets, err := secrets.LoadEnvFile(".env")
		if err != nil {
			return err
		}
		loadedSecrets = secrets.Merge(envSecrets, dirSecrets)
		if len(loadedSecrets) > 0 {
			keys := loadedSecrets.Keys()
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./content-engine.yaml or ~/.config/content-engine/content-engine.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the content database (default \"data\")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "json", "log encoding: json or console")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("content-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "content-engine"))
		}
	}

	viper.SetEnvPrefix("CONTENT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
