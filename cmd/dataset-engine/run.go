// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/extract"
	"github.com/pdiddy/dataset-engine/internal/pipeline"
	"github.com/pdiddy/dataset-engine/internal/state"
)

var runCmd = &cobra.Command{
	Use:   "run <document>",
	Short: "Process a document into dataset artifacts",
	Long: `Run executes the full pipeline over one source document: extraction
(with OCR fallback for scanned PDFs), text cleanup, dictionary-guided
repair, sentence-aware chunking, dataset export, and a quality report.

If the document is unchanged since the last successful run, the cached
artifacts are reused and no stage executes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	if workspace, _ := cmd.Flags().GetString("workspace"); workspace != "" {
		cfg.Workspace.Dir = workspace
	}
	if dictPath, _ := cmd.Flags().GetString("dictionary"); dictPath != "" {
		cfg.Dictionary.Path = dictPath
	}
	if cmd.Flags().Changed("seed") {
		cfg.Export.RandomSeed, _ = cmd.Flags().GetInt64("seed")
	}

	var engine extract.Engine
	if noOCR, _ := cmd.Flags().GetBool("no-ocr"); !noOCR {
		engine = extract.NewTesseractEngine()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := diag.NewLineSink(os.Stdout)
	result, err := pipeline.New(cfg, engine, sink).Run(ctx, args[0])
	if err != nil {
		sink.Emit("ERROR", "%v", err)
		return err
	}

	if result.Decision == state.Cached {
		fmt.Printf("Cached run reused for %s (%d chunks).\n",
			args[0], result.Report.TotalChunks)
		return nil
	}
	fmt.Printf("Processed %s via %s: %d chunks, %d vocab words.\n",
		args[0], result.Method, result.ChunkCount, result.Report.VocabSize)
	fmt.Printf("Artifacts: %s/datasets, report: %s/outputs\n",
		cfg.Workspace.Dir, cfg.Workspace.Dir)
	return nil
}

func init() {
	runCmd.Flags().String("workspace", "", "workspace directory (overrides workspace.dir)")
	runCmd.Flags().String("dictionary", "", "word-frequency list or SQLite store (overrides dictionary.path)")
	runCmd.Flags().Int64("seed", 0, "random seed for pairs and splits (overrides export.random_seed)")
	runCmd.Flags().Bool("no-ocr", false, "disable the OCR fallback for scanned PDFs")

	rootCmd.AddCommand(runCmd)
}
