// Package view models ERB templates as the analyzer sees them: a lenient
// DOM for CSS-selector scope queries, the raw text for line mapping, and the
// merged fragment list for AST queries. It also resolves which templates
// render which partials, so scope checks can walk up through partial
// boundaries.
package view

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stimlint/internal/erb"
)

// Document is one parsed template: markup tree, raw text, and fragments.
type Document struct {
	Path      string // absolute path
	RelPath   string // slash-separated, relative to the views root
	Source    string
	Doc       *goquery.Document
	Fragments []erb.Fragment
}

// Load reads and parses one template file.
func Load(absPath, relPath string) (*Document, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read view %s: %w", relPath, err)
	}
	src := string(raw)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse view %s: %w", relPath, err)
	}

	return &Document{
		Path:      absPath,
		RelPath:   filepath.ToSlash(relPath),
		Source:    src,
		Doc:       doc,
		Fragments: erb.Merge(erb.Extract(src)),
	}, nil
}

// LoadAll loads every template under root, keyed by relative path.
// Documents are built fresh per validation pass; nothing is cached across
// passes.
func LoadAll(root string) (map[string]*Document, error) {
	rels, err := DiscoverViews(root)
	if err != nil {
		return nil, err
	}
	docs := make(map[string]*Document, len(rels))
	for _, rel := range rels {
		d, err := Load(filepath.Join(root, filepath.FromSlash(rel)), rel)
		if err != nil {
			return nil, err
		}
		docs[rel] = d
	}
	return docs, nil
}

// IsPartial reports whether the template is a partial (underscore-prefixed
// file name).
func (d *Document) IsPartial() bool {
	return strings.HasPrefix(path.Base(d.RelPath), "_")
}

// Line returns the 1-based line at a byte offset.
func (d *Document) Line(offset int) int {
	return erb.LineAt(d.Source, offset)
}

// AttrLine locates the line carrying an attribute in the raw text. The DOM
// parser discards source positions, so findings fall back to a text search:
// first attr="value", then the bare attribute name. Returns 0 when absent.
func (d *Document) AttrLine(attr, value string) int {
	if value != "" {
		for _, probe := range []string{
			attr + `="` + value + `"`,
			attr + `='` + value + `'`,
		} {
			if i := strings.Index(d.Source, probe); i >= 0 {
				return d.Line(i)
			}
		}
	}
	if i := strings.Index(d.Source, attr); i >= 0 {
		return d.Line(i)
	}
	return 0
}

// skipDirs are directory names never descended into during view discovery.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".idea": true, ".vscode": true,
	"node_modules": true, "vendor": true, "tmp": true, "log": true,
	"coverage": true, "public": true,
}

// DiscoverViews walks a views directory and returns every ERB template,
// sorted, as slash-separated relative paths.
func DiscoverViews(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var rels []string
	err = filepath.Walk(root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			if skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ".erb") {
			rel, _ := filepath.Rel(root, p)
			rels = append(rels, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover views: %w", err)
	}

	sort.Strings(rels)
	return rels, nil
}
