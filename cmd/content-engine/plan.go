// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/scheduler"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the generation tasks the scheduler would run",
	Long: `Plan compares the catalog with the stored resources and lists the work
for one invocation: every gap first, then one page of stale subcategories
to refresh. Nothing is generated.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	batch, _ := cmd.Flags().GetInt("batch")

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.planner.Plan(cmd.Context(), batch)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(res)
	}
	return formatPlanOutput(res)
}

func formatPlanOutput(res scheduler.Result) error {
	if len(res.Tasks) == 0 {
		fmt.Println("Every subcategory is stocked and fresh.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-24s  %-32s  %-5s  %s\n",
		"Reason", "Category", "Subcategory", "Count", "Last generated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, t := range res.Tasks {
		last := "never"
		if !t.LastGenerated.IsZero() {
			last = t.LastGenerated.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-24s  %-32s  %-5d  %s\n",
			t.Reason, truncate(t.Category, 24), truncate(t.Subcategory, 32), t.Count, last)
	}

	fmt.Fprintf(os.Stdout, "\n%d tasks (%d gaps, %d refresh candidates), batch %d of %d, next batch %d\n",
		len(res.Tasks), res.Gaps, res.RefreshCandidates, res.Batch, res.Pages, res.NextBatch())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	planCmd.Flags().Int("batch", 0, "zero-based refresh page")
	planCmd.Flags().Bool("json", false, "output the plan as JSON")

	rootCmd.AddCommand(planCmd)
}
