// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog defines the (category, subcategory) pairs the resource
// scheduler keeps stocked with generated content.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Category is a named group of subcategories.
type Category struct {
	Name          string   `json:"name" yaml:"name"`
	Subcategories []string `json:"subcategories" yaml:"subcategories"`
}

// Catalog is an ordered list of categories. Order is significant: the
// scheduler emits tasks in catalog order.
type Catalog struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Pairs flattens the catalog into (category, subcategory) keys in order.
func (c *Catalog) Pairs() []types.PairKey {
	var pairs []types.PairKey
	for _, cat := range c.Categories {
		for _, sub := range cat.Subcategories {
			pairs = append(pairs, types.PairKey{Category: cat.Name, Subcategory: sub})
		}
	}
	return pairs
}

// Validate rejects empty names and duplicate pairs.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog has no categories")
	}
	seen := make(map[types.PairKey]bool)
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d: empty name", i)
		}
		if len(cat.Subcategories) == 0 {
			return fmt.Errorf("category %q: no subcategories", cat.Name)
		}
		for _, sub := range cat.Subcategories {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("category %q: empty subcategory", cat.Name)
			}
			key := types.PairKey{Category: cat.Name, Subcategory: sub}
			if seen[key] {
				return fmt.Errorf("duplicate pair %s/%s", cat.Name, sub)
			}
			seen[key] = true
		}
	}
	return nil
}

// Load reads a YAML catalog file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Default returns the built-in learning resource catalog.
func Default() *Catalog {
	return &Catalog{Categories: []Category{
		{Name: "Study Skills", Subcategories: []string{"Time Management", "Note Taking", "Exam Preparation"}},
		{Name: "Career Development", Subcategories: []string{"Resume Writing", "Interview Skills", "Career Exploration"}},
		{Name: "STEM", Subcategories: []string{"Mathematics", "Computer Science", "Physics", "Biology"}},
		{Name: "Humanities", Subcategories: []string{"History", "Literature", "Philosophy"}},
		{Name: "Teaching Practice", Subcategories: []string{"Lesson Planning", "Classroom Management", "Assessment Design"}},
	}}
}
