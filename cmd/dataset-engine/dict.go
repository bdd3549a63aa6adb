// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dataset-engine/internal/dict"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the word-frequency dictionary",
	Long: `Dict manages the frequency dictionary used by the repair stage. Use
subcommands to import a plain "word frequency" list into a SQLite store
or to inspect the store contents.`,
}

// --- import subcommand ---

var dictImportCmd = &cobra.Command{
	Use:   "import <frequency-list>",
	Short: "Import a word-frequency list into a SQLite store",
	Long: `Import reads a plain-text frequency list (one "word frequency" pair per
line) and loads it into a SQLite store for fast lookups. Repeated words
keep the last frequency seen.`,
	Args: cobra.ExactArgs(1),
	RunE: runDictImport,
}

func runDictImport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	store, err := dict.OpenStore(out)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportFrequencyList(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d words into %s\n", n, out)
	return nil
}

// --- stats subcommand ---

var dictStatsCmd = &cobra.Command{
	Use:   "stats <store>",
	Short: "Show dictionary store statistics",
	Long:  `Stats prints the word count and the most frequent entries of a dictionary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDictStats,
}

func runDictStats(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")

	store, err := dict.OpenStore(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Words: %d\n", count)

	entries, err := store.Top(top)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println("Most frequent:")
		for _, e := range entries {
			fmt.Printf("  %-20s %d\n", e.Word, e.Freq)
		}
	}
	return nil
}

func init() {
	dictImportCmd.Flags().String("out", "dictionary.db", "SQLite store to create or update")
	dictStatsCmd.Flags().Int("top", 10, "number of most-frequent entries to show")

	dictCmd.AddCommand(dictImportCmd)
	dictCmd.AddCommand(dictStatsCmd)
	rootCmd.AddCommand(dictCmd)
}
