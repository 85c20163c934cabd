// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curated loads the hand-picked papers shown alongside the live
// feeds. The file is optional; without it the feed is live-only.
package curated

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

type feedFile struct {
	Papers []types.Paper `yaml:"papers"`
}

// Load reads the curated papers YAML file. A missing file is not an error;
// it returns an empty list. Curated papers are always internal, whatever
// the file says.
func Load(path string) ([]types.Paper, error) {
	if path == "" {
		return []types.Paper{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []types.Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading curated file: %w", err)
	}

	var file feedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing curated file: %w", err)
	}

	out := make([]types.Paper, 0, len(file.Papers))
	for _, p := range file.Papers {
		if p.ID == "" || p.Title == "" {
			continue
		}
		p.IsExternal = false
		out = append(out, p)
	}
	return out, nil
}

// ByCategory filters the curated list down to one category.
func ByCategory(papers []types.Paper, cat types.TopicCategory) []types.Paper {
	out := []types.Paper{}
	for _, p := range papers {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}
