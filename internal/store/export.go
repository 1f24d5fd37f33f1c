// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	exportDir   = "export"
	exportLimit = 100000
)

// Export is the snapshot written by ExportYAML and ExportJSON.
type Export struct {
	Articles    []types.Article    `json:"articles" yaml:"articles"`
	Assessments []types.Assessment `json:"assessments" yaml:"assessments"`
}

// ExportYAML writes all articles and assessments to dataDir/export/export.yaml
// and returns the file path. A non-empty category limits the articles.
func (s *Store) ExportYAML(ctx context.Context, category string) (string, error) {
	snap, err := s.snapshot(ctx, category)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes the same snapshot as ExportYAML to export.json.
func (s *Store) ExportJSON(ctx context.Context, category string) (string, error) {
	snap, err := s.snapshot(ctx, category)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	dir := filepath.Join(s.dataDir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

func (s *Store) snapshot(ctx context.Context, category string) (*Export, error) {
	articles, err := s.ListArticles(ctx, category, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM assessments ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying assessments for export: %w", err)
	}
	defer rows.Close()

	snap := &Export{Articles: articles}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning assessment: %w", err)
		}
		var a types.Assessment
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decoding assessment: %w", err)
		}
		snap.Assessments = append(snap.Assessments, a)
	}
	return snap, rows.Err()
}
