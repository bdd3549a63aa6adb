// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dataset-engine/internal/evaluate"
	"github.com/pdiddy/dataset-engine/internal/state"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the quality report of the last run",
	Long: `Report prints the dataset quality report produced by the last
successful run in the workspace. Use --json for the structured form.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	if workspace, _ := cmd.Flags().GetString("workspace"); workspace != "" {
		cfg.Workspace.Dir = workspace
	}
	guard := state.NewGuard(cfg.Workspace.Dir)

	name := evaluate.FileReportText
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		name = evaluate.FileReportJSON
	}

	data, err := os.ReadFile(filepath.Join(guard.OutputsDir(), name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no report found in %s: run the pipeline first", guard.OutputsDir())
		}
		return err
	}
	fmt.Print(string(data))
	return nil
}

func init() {
	reportCmd.Flags().String("workspace", "", "workspace directory (overrides workspace.dir)")
	reportCmd.Flags().Bool("json", false, "print the structured JSON report")

	rootCmd.AddCommand(reportCmd)
}
