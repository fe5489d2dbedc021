// Package source reads corpus records from JSON and YAML files.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
)

// record is the on-disk shape of one corpus entry. Fields are pointers so a
// missing key can be told apart from an empty string.
type record struct {
	ID      *string `json:"id" yaml:"id"`
	Title   *string `json:"title" yaml:"title"`
	Content *string `json:"content" yaml:"content"`
}

func (r *record) document() (document.Document, error) {
	switch {
	case r.ID == nil:
		return document.Document{}, errors.New("id is required")
	case r.Title == nil:
		return document.Document{}, fmt.Errorf("document %q: title is required", *r.ID)
	case r.Content == nil:
		return document.Document{}, fmt.Errorf("document %q: content is required", *r.ID)
	}
	return document.Reconstruct(*r.ID, *r.Title, *r.Content), nil
}

// Files loads documents from a list of paths and doublestar patterns.
type Files struct {
	patterns []string
}

// NewFiles creates a file source. Each entry is either a plain path or a
// pattern such as "data/**/*.json".
func NewFiles(patterns ...string) *Files {
	return &Files{patterns: patterns}
}

// Load resolves every pattern, reads matches in lexical order and returns
// all records concatenated. Any unreadable file or invalid record fails the
// whole load.
func (f *Files) Load(ctx context.Context) ([]document.Document, error) {
	paths, err := f.resolve()
	if err != nil {
		return nil, err
	}

	var docs []document.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		fileDocs, err := readFile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorpusLoad, p, err)
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

func (f *Files) resolve() ([]string, error) {
	if len(f.patterns) == 0 {
		return nil, fmt.Errorf("%w: no corpus paths configured", domain.ErrCorpusLoad)
	}

	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range f.patterns {
		matches, err := expand(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorpusLoad, pattern, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

func expand(pattern string) ([]string, error) {
	if !hasMeta(pattern) {
		if _, err := os.Stat(pattern); err != nil {
			return nil, err
		}
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.New("pattern matched no files")
	}
	sort.Strings(matches)
	return matches, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func readFile(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var recs []record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &recs)
	default:
		err = json.Unmarshal(data, &recs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	docs := make([]document.Document, 0, len(recs))
	for i, r := range recs {
		doc, err := r.document()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
