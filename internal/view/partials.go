package view

import (
	"fmt"
	"path"
	"sort"

	"stimlint/internal/erb"
	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
)

// PartialRefs maps partial templates to the templates that render them (and
// back). Built once per validation run by scanning every view file's
// fragments for render call sites; immutable afterwards.
type PartialRefs struct {
	// Parents maps a partial's rel path to the ordered set of templates
	// that render it.
	Parents map[string][]string
	// Children is the forward direction: template rel path to the partials
	// it renders.
	Children map[string][]string

	docs map[string]*Document
}

// BuildPartialRefs scans the given documents for render-partial call sites.
// Fragments that fail to parse are skipped.
func BuildPartialRefs(docs map[string]*Document, cache *parser.Cache) *PartialRefs {
	refs := &PartialRefs{
		Parents:  make(map[string][]string),
		Children: make(map[string][]string),
		docs:     docs,
	}

	rels := make([]string, 0, len(docs))
	for rel := range docs {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		doc := docs[rel]
		for _, frag := range doc.Fragments {
			tree, source, err := cache.Parse(frag.Code)
			if err != nil || tree == nil {
				continue
			}
			for _, rc := range rubyast.FindRenderCalls(tree.RootNode(), source) {
				partial := PartialPath(rel, rc.Name)
				if _, ok := docs[partial]; !ok {
					continue
				}
				refs.add(partial, rel)
			}
		}
	}
	return refs
}

func (r *PartialRefs) add(partial, parent string) {
	for _, p := range r.Parents[partial] {
		if p == parent {
			return
		}
	}
	r.Parents[partial] = append(r.Parents[partial], parent)
	r.Children[parent] = append(r.Children[parent], partial)
}

// PartialPath resolves a render-call partial name to a template path
// relative to the views root. Slash-containing names resolve against the
// views root with the leaf underscored ("shared/header" ->
// "shared/_header.html.erb"); bare names resolve next to the referencing
// file ("form" from "todos/index.html.erb" -> "todos/_form.html.erb").
func PartialPath(fromRel, name string) string {
	if dir := path.Dir(name); dir != "." {
		return path.Join(dir, "_"+path.Base(name)+".html.erb")
	}
	return path.Join(path.Dir(fromRel), "_"+name+".html.erb")
}

// ControllerInAncestors reports whether any chain of templates rendering the
// given partial carries the named controller, either as a literal
// data-controller attribute or declared in a fragment. Partials rendered
// from other partials are followed recursively.
func (r *PartialRefs) ControllerInAncestors(partialRel, controller string, cache *parser.Cache) bool {
	return r.controllerInAncestors(partialRel, controller, cache, map[string]bool{})
}

func (r *PartialRefs) controllerInAncestors(rel, controller string, cache *parser.Cache, visited map[string]bool) bool {
	if visited[rel] {
		return false
	}
	visited[rel] = true

	for _, parentRel := range r.Parents[rel] {
		parent, ok := r.docs[parentRel]
		if !ok {
			continue
		}
		if parent.Doc.Find(controllerSelector(controller)).Length() > 0 {
			return true
		}
		if fragmentsDeclareController(parent, controller, cache) {
			return true
		}
		if parent.IsPartial() && r.controllerInAncestors(parentRel, controller, cache, visited) {
			return true
		}
	}
	return false
}

// fragmentsDeclareController runs the controller-presence query over every
// parseable fragment in the document.
func fragmentsDeclareController(doc *Document, controller string, cache *parser.Cache) bool {
	for _, frag := range doc.Fragments {
		code, ok := erb.Preprocess(frag.Code)
		if !ok {
			continue
		}
		tree, source, err := cache.Parse(code)
		if err != nil || tree == nil {
			continue
		}
		if rubyast.HasController(tree.RootNode(), source, controller) {
			return true
		}
	}
	return false
}

func controllerSelector(controller string) string {
	return fmt.Sprintf("[data-controller~=%q]", controller)
}
