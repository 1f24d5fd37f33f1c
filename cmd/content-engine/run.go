// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan one batch and generate an article for every task",
	Long: `Run executes one trigger: it plans the given refresh page, generates an
article for each task, and records approved articles as resources of their
subcategory. Rejected drafts are skipped and failures do not stop the batch.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	batch, _ := cmd.Flags().GetInt("batch")

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.runner.Run(cmd.Context(), batch)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(sum)
	}
	fmt.Printf("batch %d: %d planned, %d generated, %d skipped, %d failed\n",
		sum.Batch, sum.Planned, sum.Generated, sum.Skipped, sum.Failed)
	for _, e := range sum.Errors {
		fmt.Printf("  %s\n", e)
	}
	fmt.Printf("next batch: %d\n", sum.NextBatch)
	if sum.Failed > 0 {
		return fmt.Errorf("%d task(s) failed", sum.Failed)
	}
	return nil
}

func init() {
	runCmd.Flags().Int("batch", 0, "zero-based refresh page")
	runCmd.Flags().Bool("json", false, "output the summary as JSON")

	rootCmd.AddCommand(runCmd)
}
