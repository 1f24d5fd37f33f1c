// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

// RecordResource links a persisted article to its catalog pair and moves the
// pair's generation marker to r.CreatedAt, in one transaction.
func (s *Store) RecordResource(ctx context.Context, r *types.Resource) error {
	if r.ID == "" || r.ArticleID == "" {
		return fmt.Errorf("recording resource: empty id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding resource: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO resources (id, category, subcategory, article_id, created_at, doc)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Category, r.Subcategory, r.ArticleID, formatTime(r.CreatedAt), string(doc),
	); err != nil {
		return fmt.Errorf("inserting resource %s: %w", r.ID, err)
	}

	if err := markGenerated(ctx, tx, r.Category, r.Subcategory, r.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkGenerated sets the generation marker of a catalog pair.
func (s *Store) MarkGenerated(ctx context.Context, category, subcategory string, at time.Time) error {
	return markGenerated(ctx, s.db, category, subcategory, at)
}

func markGenerated(ctx context.Context, ex execer, category, subcategory string, at time.Time) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO generation_markers (category, subcategory, last_generated) VALUES (?, ?, ?)
		 ON CONFLICT(category, subcategory) DO UPDATE SET last_generated=excluded.last_generated`,
		category, subcategory, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("updating generation marker %s/%s: %w", category, subcategory, err)
	}
	return nil
}

// Inventory returns resource counts and generation markers for every pair
// that has either. Pairs with neither are absent.
func (s *Store) Inventory(ctx context.Context) (types.Inventory, error) {
	inv := make(types.Inventory)

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, subcategory, COUNT(*) FROM resources GROUP BY category, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("counting resources: %w", err)
	}
	for rows.Next() {
		var key types.PairKey
		var count int
		if err := rows.Scan(&key.Category, &key.Subcategory, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning resource count: %w", err)
		}
		st := inv[key]
		st.Count = count
		inv[key] = st
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT category, subcategory, last_generated FROM generation_markers`)
	if err != nil {
		return nil, fmt.Errorf("reading generation markers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key types.PairKey
		var ts string
		if err := rows.Scan(&key.Category, &key.Subcategory, &ts); err != nil {
			return nil, fmt.Errorf("scanning generation marker: %w", err)
		}
		at, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parsing generation marker %s/%s: %w", key.Category, key.Subcategory, err)
		}
		st := inv[key]
		st.LastGenerated = at
		inv[key] = st
	}
	return inv, rows.Err()
}

// ListResources returns stored resources, newest first. Empty category or
// subcategory values do not filter.
func (s *Store) ListResources(ctx context.Context, category, subcategory string) ([]types.Resource, error) {
	var where []string
	var args []any
	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}
	if subcategory != "" {
		where = append(where, "subcategory = ?")
		args = append(args, subcategory)
	}

	query := `SELECT doc FROM resources`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	out := []types.Resource{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		var r types.Resource
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("decoding resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
