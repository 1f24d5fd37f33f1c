// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists generated artifacts as JSON documents in SQLite.
// Each collection is a table holding the document plus the columns it is
// queried by. Persisted artifacts are write-once: saves of an existing ID
// fail.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/content-engine/pkg/types"
)

const dbFile = "content.db"

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("store: not found")

// Store manages the content database.
type Store struct {
	db      *sql.DB
	dataDir string
	now     func() time.Time
}

// Open opens or creates the database at dataDir/content.db and creates the
// schema if it does not exist.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		dataDir: dataDir,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT,
			title TEXT NOT NULL,
			created_at TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category, created_at)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			created_at TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rubrics (
			id TEXT PRIMARY KEY,
			assessment_id TEXT NOT NULL UNIQUE REFERENCES assessments(id),
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			article_id TEXT NOT NULL REFERENCES articles(id),
			created_at TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_pair ON resources(category, subcategory)`,
		`CREATE TABLE IF NOT EXISTS generation_markers (
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			last_generated TEXT NOT NULL,
			PRIMARY KEY (category, subcategory)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// getDoc loads the JSON document with the given id from table into out.
func (s *Store) getDoc(ctx context.Context, table, id string, out any) error {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying %s %s: %w", table, id, err)
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", table, id, err)
	}
	return nil
}

// SaveArticle inserts an approved article.
func (s *Store) SaveArticle(ctx context.Context, a *types.Article) error {
	if a.ID == "" {
		return fmt.Errorf("saving article: empty id")
	}
	if !a.Quality.IsApproved {
		return fmt.Errorf("saving article %s: not approved", a.ID)
	}
	return insertArticle(ctx, s.db, a)
}

func insertArticle(ctx context.Context, ex execer, a *types.Article) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding article: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO articles (id, kind, category, subcategory, title, created_at, doc)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Kind), a.Category, a.Subcategory, a.Title, formatTime(a.CreatedAt), string(doc),
	)
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", a.ID, err)
	}
	return nil
}

// GetArticle returns the article with id, or ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (*types.Article, error) {
	var a types.Article
	if err := s.getDoc(ctx, "articles", id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListArticles returns the newest articles, optionally filtered by category.
// limit <= 0 returns at most 50.
func (s *Store) ListArticles(ctx context.Context, category string, limit int) ([]types.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT doc FROM articles`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var out []types.Article
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		var a types.Article
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decoding article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAssessment inserts an assessment and its rubric in one transaction.
func (s *Store) SaveAssessment(ctx context.Context, a *types.Assessment, r *types.Rubric) error {
	if a.ID == "" || r.ID == "" {
		return fmt.Errorf("saving assessment: empty id")
	}
	if r.AssessmentID != a.ID || a.RubricID != r.ID {
		return fmt.Errorf("saving assessment %s: rubric link mismatch", a.ID)
	}

	aDoc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}
	rDoc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding rubric: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assessments (id, subject, topic, created_at, doc) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Subject, a.Topic, formatTime(a.CreatedAt), string(aDoc),
	); err != nil {
		return fmt.Errorf("inserting assessment %s: %w", a.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rubrics (id, assessment_id, doc) VALUES (?, ?, ?)`,
		r.ID, r.AssessmentID, string(rDoc),
	); err != nil {
		return fmt.Errorf("inserting rubric %s: %w", r.ID, err)
	}

	return tx.Commit()
}

// GetAssessment returns the assessment with id, or ErrNotFound.
func (s *Store) GetAssessment(ctx context.Context, id string) (*types.Assessment, error) {
	var a types.Assessment
	if err := s.getDoc(ctx, "assessments", id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetRubric returns the rubric attached to assessmentID, or ErrNotFound.
func (s *Store) GetRubric(ctx context.Context, assessmentID string) (*types.Rubric, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM rubrics WHERE assessment_id = ?`, assessmentID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying rubric for %s: %w", assessmentID, err)
	}
	var r types.Rubric
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("decoding rubric: %w", err)
	}
	return &r, nil
}
