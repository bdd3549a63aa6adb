// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dataset-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dataset-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "dataset-engine",
	Short: "Turn source documents into training-ready text datasets",
	Long: `dataset-engine processes a source document (PDF or plain text) into a
set of training-ready dataset artifacts: cleaned text chunks, an
instruction-format dataset, similarity pairs, and train/val/test splits,
plus a quality report.

Runs are cached by document signature: re-running over an unchanged
document reuses the existing artifacts instead of reprocessing.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dataset-engine.yaml or ~/.config/dataset-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dataset-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dataset-engine"))
		}
	}

	viper.SetEnvPrefix("DATASET_ENGINE")
	viper.AutomaticEnv()

	defaults := types.DefaultConfig()
	viper.SetDefault("workspace.dir", defaults.Workspace.Dir)
	viper.SetDefault("extraction.threshold_chars", defaults.Extraction.ThresholdChars)
	viper.SetDefault("extraction.ocr_confidence_min", defaults.Extraction.OCRConfidenceMin)
	viper.SetDefault("extraction.ocr_timeout", defaults.Extraction.OCRTimeout)
	viper.SetDefault("clean.strip_artifacts", defaults.Clean.StripArtifacts)
	viper.SetDefault("repair.min_join_frequency", defaults.Repair.MinJoinFrequency)
	viper.SetDefault("repair.enable_token_split", defaults.Repair.EnableTokenSplit)
	viper.SetDefault("chunk.target_words", defaults.Chunk.TargetWords)
	viper.SetDefault("chunk.min_words", defaults.Chunk.MinWords)
	viper.SetDefault("chunk.max_words", defaults.Chunk.MaxWords)
	viper.SetDefault("chunk.tail_policy", string(defaults.Chunk.Tail))
	viper.SetDefault("chunk.min_sentence_chars", defaults.Chunk.MinSentenceChars)
	viper.SetDefault("chunk.max_symbol_ratio", defaults.Chunk.MaxSymbolRatio)
	viper.SetDefault("export.split_ratios", []float64{
		defaults.Export.SplitRatios[0], defaults.Export.SplitRatios[1], defaults.Export.SplitRatios[2],
	})
	viper.SetDefault("export.random_seed", defaults.Export.RandomSeed)
	viper.SetDefault("dictionary.path", "")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the effective configuration from config file,
// environment, and defaults.
func engineConfig() types.Config {
	cfg := types.Config{
		Workspace: types.WorkspaceConfig{
			Dir: viper.GetString("workspace.dir"),
		},
		Extraction: types.ExtractionConfig{
			ThresholdChars:   viper.GetInt("extraction.threshold_chars"),
			OCRConfidenceMin: viper.GetFloat64("extraction.ocr_confidence_min"),
			OCRTimeout:       viper.GetDuration("extraction.ocr_timeout"),
		},
		Clean: types.CleanConfig{
			StripArtifacts: viper.GetBool("clean.strip_artifacts"),
		},
		Repair: types.RepairConfig{
			MinJoinFrequency: viper.GetInt64("repair.min_join_frequency"),
			EnableTokenSplit: viper.GetBool("repair.enable_token_split"),
		},
		Chunk: types.ChunkConfig{
			TargetWords:      viper.GetInt("chunk.target_words"),
			MinWords:         viper.GetInt("chunk.min_words"),
			MaxWords:         viper.GetInt("chunk.max_words"),
			Tail:             types.TailPolicy(viper.GetString("chunk.tail_policy")),
			MinSentenceChars: viper.GetInt("chunk.min_sentence_chars"),
			MaxSymbolRatio:   viper.GetFloat64("chunk.max_symbol_ratio"),
		},
		Export: types.ExportConfig{
			RandomSeed: viper.GetInt64("export.random_seed"),
		},
		Dictionary: types.DictionaryConfig{
			Path: viper.GetString("dictionary.path"),
		},
	}

	ratios := cast.ToFloat64Slice(viper.Get("export.split_ratios"))
	if len(ratios) == 3 {
		copy(cfg.Export.SplitRatios[:], ratios)
	} else {
		cfg.Export.SplitRatios = types.DefaultConfig().Export.SplitRatios
	}
	if cfg.Extraction.OCRTimeout <= 0 {
		cfg.Extraction.OCRTimeout = 5 * time.Minute
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
