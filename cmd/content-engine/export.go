// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export articles and assessments to YAML or JSON",
	Long: `Export writes every stored article and assessment to data/export/.
Use --category to limit the articles to one catalog category.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	category, _ := cmd.Flags().GetString("category")

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var paths []string
	switch format {
	case "yaml", "":
		p, err := a.store.ExportYAML(ctx, category)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	case "json":
		p, err := a.store.ExportJSON(ctx, category)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	case "both":
		y, err := a.store.ExportYAML(ctx, category)
		if err != nil {
			return err
		}
		j, err := a.store.ExportJSON(ctx, category)
		if err != nil {
			return err
		}
		paths = append(paths, y, j)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or both", format)
	}

	for _, p := range paths {
		fmt.Println("Exported to", p)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml, json, or both")
	exportCmd.Flags().String("category", "", "limit articles to one category")

	rootCmd.AddCommand(exportCmd)
}
