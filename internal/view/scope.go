package view

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/erb"
	"stimlint/internal/parser"
)

// State classifies where a declarative wiring element was found relative to
// a controller attachment point.
type State int

const (
	// InScope: on the controller element, a descendant, a fragment, or a
	// rendered partial.
	InScope State = iota
	// OutOfScope: present elsewhere in the file, outside the controller
	// element's subtree.
	OutOfScope
	// NotFound: absent from the file entirely.
	NotFound
)

func (s State) String() string {
	switch s {
	case InScope:
		return "in-scope"
	case OutOfScope:
		return "out-of-scope"
	default:
		return "not-found"
	}
}

// FragmentQuery reports whether a parsed fragment satisfies a requirement
// (declares the target, value, etc.).
type FragmentQuery func(root *tree_sitter.Node, source []byte) bool

// Resolver answers scope-membership questions for one validation run.
// Refs and Cache are shared, read-only-after-build state.
type Resolver struct {
	Refs  *PartialRefs
	Cache *parser.Cache
}

// ResolveAttr classifies a required attribute (optionally restricted to a
// whitespace-separated token of its value) against a controller element.
// Resolution order: the element itself, its descendants, fragment queries,
// partials rendered by this template, then an unrestricted document search
// to split out-of-scope from not-found.
//
// Any fragment match in the file counts as in-scope regardless of where the
// fragment sits. That is a deliberate looseness; see DESIGN.md.
func (r *Resolver) ResolveAttr(doc *Document, host *goquery.Selection, attr, token string, query FragmentQuery) State {
	if matchAttr(host, attr, token) {
		return InScope
	}
	if matchAttr(host.Find("["+attr+"]"), attr, token) {
		return InScope
	}
	if query != nil && r.FragmentsMatch(doc, query) {
		return InScope
	}
	if r.attrInRenderedPartials(doc.RelPath, attr, token, query, map[string]bool{}) {
		return InScope
	}
	if matchAttr(doc.Doc.Find("["+attr+"]"), attr, token) {
		return OutOfScope
	}
	return NotFound
}

// FragmentsMatch runs query over every parseable fragment in the document.
func (r *Resolver) FragmentsMatch(doc *Document, query FragmentQuery) bool {
	for _, frag := range doc.Fragments {
		code, ok := erb.Preprocess(frag.Code)
		if !ok {
			continue
		}
		tree, source, err := r.Cache.Parse(code)
		if err != nil || tree == nil {
			continue
		}
		if query(tree.RootNode(), source) {
			return true
		}
	}
	return false
}

// attrInRenderedPartials follows the forward partial map: a target declared
// inside a partial is in scope of a controller declared in the template that
// renders it.
func (r *Resolver) attrInRenderedPartials(rel, attr, token string, query FragmentQuery, visited map[string]bool) bool {
	if r.Refs == nil || visited[rel] {
		return false
	}
	visited[rel] = true

	for _, childRel := range r.Refs.Children[rel] {
		child, ok := r.Refs.docs[childRel]
		if !ok {
			continue
		}
		if matchAttr(child.Doc.Find("["+attr+"]"), attr, token) {
			return true
		}
		if query != nil && r.FragmentsMatch(child, query) {
			return true
		}
		if r.attrInRenderedPartials(childRel, attr, token, query, visited) {
			return true
		}
	}
	return false
}

// ActionElementInScope walks the markup upward from an action-bearing
// element looking for the controller declaration, then falls back to partial
// ancestry when the template is a partial.
func (r *Resolver) ActionElementInScope(doc *Document, sel *goquery.Selection, controller string) bool {
	if sel.Closest(controllerSelector(controller)).Length() > 0 {
		return true
	}
	if doc.IsPartial() && r.Refs != nil && r.Refs.ControllerInAncestors(doc.RelPath, controller, r.Cache) {
		return true
	}
	return false
}

var tagOpenRe = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)`)

// FragmentActionInScope applies the line-range heuristic for actions emitted
// by fragment attributes rather than literal markup: find the nearest
// preceding line that opens a tag and mentions the controller, then scan
// forward counting that tag's opens and closes until depth returns to zero.
// The action is in scope iff its line falls inside that range.
func (r *Resolver) FragmentActionInScope(doc *Document, controller string, actionLine int) bool {
	lines := strings.Split(doc.Source, "\n")
	if actionLine < 1 || actionLine > len(lines) {
		return false
	}

	for i := actionLine; i >= 1; i-- {
		line := lines[i-1]
		if !lineDeclaresController(line, controller) {
			continue
		}
		m := tagOpenRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tag := m[1]

		depth := 0
		for j := i; j <= len(lines); j++ {
			depth += countTagOpens(lines[j-1], tag) - countTagCloses(lines[j-1], tag)
			if depth <= 0 {
				return actionLine >= i && actionLine <= j
			}
		}
		// Tag never closes: scope runs to end of file.
		return actionLine >= i
	}
	if doc.IsPartial() && r.Refs != nil {
		return r.Refs.ControllerInAncestors(doc.RelPath, controller, r.Cache)
	}
	return false
}

// controllerValueRe captures the quoted value of a controller declaration in
// raw text, both the markup attribute form (data-controller="...") and the
// fragment hash forms (controller: "...", "controller" => "...").
var controllerValueRe = regexp.MustCompile(`controller["']?\s*(?:=>|[:=])\s*["']([^"']*)["']`)

func lineDeclaresController(line, controller string) bool {
	for _, m := range controllerValueRe.FindAllStringSubmatch(line, -1) {
		for _, tok := range strings.Fields(m[1]) {
			if tok == controller {
				return true
			}
		}
	}
	return false
}

func countTagOpens(line, tag string) int {
	n := 0
	for i := 0; ; {
		idx := strings.Index(line[i:], "<"+tag)
		if idx < 0 {
			return n
		}
		pos := i + idx + 1 + len(tag)
		if pos >= len(line) || line[pos] == ' ' || line[pos] == '>' || line[pos] == '\t' || line[pos] == '/' {
			n++
		}
		i = i + idx + 1
	}
}

func countTagCloses(line, tag string) int {
	return strings.Count(line, "</"+tag+">")
}

// matchAttr reports whether any element in sel carries attr, and when token
// is non-empty, whether the attribute value contains it as a
// whitespace-separated token.
func matchAttr(sel *goquery.Selection, attr, token string) bool {
	found := false
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok {
			return true
		}
		if token == "" {
			found = true
			return false
		}
		for _, f := range strings.Fields(v) {
			if f == token {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
