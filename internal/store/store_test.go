// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func article(id, category string, created time.Time) *types.Article {
	return &types.Article{
		ID:          id,
		Kind:        types.KindArticle,
		Title:       "Title " + id,
		Description: "About " + id,
		Category:    category,
		Topic:       "topic " + id,
		Sections:    []types.Section{{Heading: "Intro", Body: "Body"}},
		Quality:     types.Quality{Score: 88, IsApproved: true},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func assessmentPair(id string) (*types.Assessment, *types.Rubric) {
	a := &types.Assessment{
		ID:          id,
		Title:       "Quiz " + id,
		Subject:     "Biology",
		Topic:       "Cells",
		Difficulty:  "medium",
		Questions:   []types.Question{{ID: "q1", Type: types.QuestionTrueFalse, Prompt: "Cells divide?", Answer: "true", Points: 2}},
		TotalPoints: 2,
		RubricID:    "r-" + id,
		CreatedAt:   t0,
	}
	r := &types.Rubric{
		ID:           "r-" + id,
		AssessmentID: id,
		Criteria:     []types.RubricCriterion{{QuestionID: "q1", Points: 2, Criteria: []string{"correct"}}},
		TotalPoints:  2,
		CreatedAt:    t0,
	}
	return a, r
}

// --- articles ---

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
	assert.Equal(t, dir, s.DataDir())

	// Reopening keeps the schema idempotent.
	s2, err := Open(dir)
	require.NoError(t, err)
	s2.Close()
}

func TestSaveAndGetArticle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := article("a1", "science", t0)
	require.NoError(t, s.SaveArticle(ctx, a))

	got, err := s.GetArticle(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.Sections, got.Sections)
	assert.True(t, got.CreatedAt.Equal(t0))

	_, err = s.GetArticle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveArticleRejects(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	unapproved := article("a1", "science", t0)
	unapproved.Quality.IsApproved = false
	assert.Error(t, s.SaveArticle(ctx, unapproved))

	assert.Error(t, s.SaveArticle(ctx, article("", "science", t0)))

	require.NoError(t, s.SaveArticle(ctx, article("a2", "science", t0)))
	assert.Error(t, s.SaveArticle(ctx, article("a2", "science", t0)), "duplicate ids are write-once")
}

func TestListArticles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveArticle(ctx, article("old", "science", t0)))
	require.NoError(t, s.SaveArticle(ctx, article("new", "science", t0.Add(time.Hour))))
	require.NoError(t, s.SaveArticle(ctx, article("art", "arts", t0.Add(2*time.Hour))))

	all, err := s.ListArticles(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "art", all[0].ID)

	sci, err := s.ListArticles(ctx, "science", 10)
	require.NoError(t, err)
	require.Len(t, sci, 2)
	assert.Equal(t, []string{"new", "old"}, []string{sci[0].ID, sci[1].ID})

	one, err := s.ListArticles(ctx, "science", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

// --- assessments ---

func TestSaveAssessmentWithRubric(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, r := assessmentPair("as1")
	require.NoError(t, s.SaveAssessment(ctx, a, r))

	gotA, err := s.GetAssessment(ctx, "as1")
	require.NoError(t, err)
	assert.Equal(t, a.Questions, gotA.Questions)

	gotR, err := s.GetRubric(ctx, "as1")
	require.NoError(t, err)
	assert.Equal(t, "r-as1", gotR.ID)
	assert.Equal(t, r.Criteria, gotR.Criteria)

	_, err = s.GetRubric(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAssessment(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAssessmentRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, r := assessmentPair("as1")
	require.NoError(t, s.SaveAssessment(ctx, a, r))

	// Second assessment reuses the rubric id; the rubric insert fails and the
	// assessment insert must roll back with it.
	a2, r2 := assessmentPair("as2")
	r2.ID = r.ID
	a2.RubricID = r.ID
	require.Error(t, s.SaveAssessment(ctx, a2, r2))

	_, err := s.GetAssessment(ctx, "as2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAssessmentLinkMismatch(t *testing.T) {
	s := testStore(t)
	a, r := assessmentPair("as1")
	r.AssessmentID = "other"
	assert.Error(t, s.SaveAssessment(context.Background(), a, r))
}

// --- resources and inventory ---

func TestRecordResourceAndInventory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveArticle(ctx, article("a1", "science", t0)))
	require.NoError(t, s.SaveArticle(ctx, article("a2", "science", t0)))

	require.NoError(t, s.RecordResource(ctx, &types.Resource{
		ID: "r1", Category: "science", Subcategory: "biology", ArticleID: "a1", CreatedAt: t0,
	}))
	require.NoError(t, s.RecordResource(ctx, &types.Resource{
		ID: "r2", Category: "science", Subcategory: "biology", ArticleID: "a2", CreatedAt: t0.Add(time.Hour),
	}))
	require.NoError(t, s.MarkGenerated(ctx, "arts", "music", t0.Add(-time.Hour)))

	inv, err := s.Inventory(ctx)
	require.NoError(t, err)

	bio := inv[types.PairKey{Category: "science", Subcategory: "biology"}]
	assert.Equal(t, 2, bio.Count)
	assert.True(t, bio.LastGenerated.Equal(t0.Add(time.Hour)))

	music := inv[types.PairKey{Category: "arts", Subcategory: "music"}]
	assert.Equal(t, 0, music.Count)
	assert.True(t, music.LastGenerated.Equal(t0.Add(-time.Hour)))

	_, ok := inv[types.PairKey{Category: "arts", Subcategory: "dance"}]
	assert.False(t, ok)

	res, err := s.ListResources(ctx, "science", "biology")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "r2", res[0].ID)
}

func TestListResourcesFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	records := []types.Resource{
		{ID: "r1", Category: "science", Subcategory: "biology", ArticleID: "a1", CreatedAt: t0},
		{ID: "r2", Category: "science", Subcategory: "physics", ArticleID: "a2", CreatedAt: t0.Add(time.Hour)},
		{ID: "r3", Category: "arts", Subcategory: "music", ArticleID: "a3", CreatedAt: t0.Add(2 * time.Hour)},
	}
	for _, r := range records {
		require.NoError(t, s.SaveArticle(ctx, article(r.ArticleID, r.Category, r.CreatedAt)))
		require.NoError(t, s.RecordResource(ctx, &r))
	}

	ids := func(rs []types.Resource) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name        string
		category    string
		subcategory string
		want        []string
	}{
		{"no filter", "", "", []string{"r3", "r2", "r1"}},
		{"category only", "science", "", []string{"r2", "r1"}},
		{"subcategory only", "", "music", []string{"r3"}},
		{"both", "science", "biology", []string{"r1"}},
		{"no match", "history", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ListResources(ctx, tt.category, tt.subcategory)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
		})
	}
}

func TestRecordResourceRequiresArticle(t *testing.T) {
	s := testStore(t)
	err := s.RecordResource(context.Background(), &types.Resource{
		ID: "r1", Category: "science", Subcategory: "biology", ArticleID: "ghost",
	})
	require.Error(t, err)

	inv, err := s.Inventory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, inv, "marker must roll back with the failed insert")
}

// --- export ---

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveArticle(ctx, article("a1", "science", t0)))
	require.NoError(t, s.SaveArticle(ctx, article("a2", "arts", t0)))
	a, r := assessmentPair("as1")
	require.NoError(t, s.SaveAssessment(ctx, a, r))

	yamlPath, err := s.ExportYAML(ctx, "science")
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML.Articles, 1)
	assert.Equal(t, "a1", fromYAML.Articles[0].ID)
	assert.Len(t, fromYAML.Assessments, 1)

	jsonPath, err := s.ExportJSON(ctx, "")
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Export
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Len(t, fromJSON.Articles, 2)
	assert.Equal(t, filepath.Join(s.DataDir(), exportDir, "export.json"), jsonPath)
}
