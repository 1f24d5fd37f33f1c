// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArtifactKind selects the shape of a generated long-form artifact.
type ArtifactKind string

const (
	KindArticle  ArtifactKind = "article"
	KindLesson   ArtifactKind = "lesson"
	KindTextbook ArtifactKind = "textbook"
)

// Valid reports whether k is a known artifact kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindArticle, KindLesson, KindTextbook:
		return true
	}
	return false
}

// Section is one heading and its body. For textbooks a section is a chapter.
type Section struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

// Quality records the verifier outcome attached to an approved artifact.
type Quality struct {
	// Score is the final verifier score on a 0-100 scale.
	Score int `json:"score" yaml:"score"`

	// IsApproved is true when Score met the approval threshold.
	IsApproved bool `json:"is_approved" yaml:"is_approved"`

	// Revisions is the number of revise cycles the draft went through.
	Revisions int `json:"revisions" yaml:"revisions"`
}

// Article is a generated article, lesson, or textbook.
type Article struct {
	ID           string       `json:"id" yaml:"id"`
	Kind         ArtifactKind `json:"kind" yaml:"kind"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Category     string       `json:"category" yaml:"category"`
	Subcategory  string       `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Topic        string       `json:"topic" yaml:"topic"`
	Sections     []Section    `json:"sections" yaml:"sections"`
	KeyTakeaways []string     `json:"key_takeaways,omitempty" yaml:"key_takeaways,omitempty"`
	Sources      []string     `json:"sources,omitempty" yaml:"sources,omitempty"`
	Quality      Quality      `json:"quality" yaml:"quality"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
}

// Resource links a generated article to the catalog pair it fills.
type Resource struct {
	ID          string    `json:"id" yaml:"id"`
	Category    string    `json:"category" yaml:"category"`
	Subcategory string    `json:"subcategory" yaml:"subcategory"`
	ArticleID   string    `json:"article_id" yaml:"article_id"`
	Title       string    `json:"title" yaml:"title"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
