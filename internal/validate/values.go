package validate

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/naming"
	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
	"stimlint/internal/view"
)

// ValidateValues checks that every required value of every attached
// controller is supplied within the controller's scope. Values with defaults
// or skip markers are exempt. On a miss, a small set of common-mistake
// attribute spellings is probed so the finding can name the closest match.
func (r *Runner) ValidateValues() ([]Finding, error) {
	docs, err := view.LoadAll(r.Config.ViewsDir)
	if err != nil {
		return nil, err
	}
	cache := parser.NewCache()
	defer cache.Close()
	res := &view.Resolver{Refs: r.refs, Cache: cache}

	var findings []Finding
	for _, rel := range sortedKeys(docs) {
		doc := docs[rel]
		for _, name := range declaredControllers(doc, cache) {
			ctrl, ok := r.Controllers[name]
			if !ok || ctrl.IsSystemController {
				continue
			}
			hosts := doc.Doc.Find(fmt.Sprintf("[data-controller~=%q]", name))

			for _, value := range ctrl.Values {
				if !ctrl.ValueRequired(value) {
					continue
				}
				attr := valueAttr(name, value)
				query := func(root *tree_sitter.Node, source []byte) bool {
					return len(rubyast.FindValues(root, source, name, value)) > 0
				}
				state := res.ResolveAttr(doc, hosts, attr, "", query)
				if state == view.InScope {
					continue
				}
				if variant, ok := probeValueVariants(doc, name, value); ok {
					findings = append(findings, Finding{
						Kind:    ValueWrongFormat,
						File:    rel,
						Line:    doc.AttrLine(variant, ""),
						Message: fmt.Sprintf("controller %q expects value %q as %s, found %s instead", name, value, attr, variant),
						Suggestion: fmt.Sprintf("rename the attribute to %s", attr),
					})
					continue
				}
				msg := fmt.Sprintf("controller %q requires value %q but no element supplies %s", name, value, attr)
				if state == view.OutOfScope {
					msg = fmt.Sprintf("value %q of controller %q exists in this file but outside the controller's element", value, name)
				}
				findings = append(findings, Finding{
					Kind:       MissingValue,
					File:       rel,
					Line:       doc.AttrLine("data-controller", name),
					Message:    msg,
					Suggestion: fmt.Sprintf("add %s to the element with data-controller=%q", attr, name),
				})
			}
		}
	}
	return findings, nil
}

func valueAttr(controller, value string) string {
	return "data-" + controller + "-" + naming.Kebab(value) + "-value"
}

// probeValueVariants checks the usual misspellings: missing controller
// prefix, missing -value suffix, underscores instead of hyphens, and the
// suffix folded into the middle. Returns the first variant present anywhere
// in the document.
func probeValueVariants(doc *view.Document, controller, value string) (string, bool) {
	kebab := naming.Kebab(value)
	variants := []string{
		"data-" + kebab + "-value",
		"data-" + controller + "-" + kebab,
		"data-" + controller + "-" + naming.Underscore(value) + "-value",
		"data-" + controller + "-value-" + kebab,
	}
	for _, v := range variants {
		if v == valueAttr(controller, value) {
			continue
		}
		if doc.Doc.Find("["+v+"]").Length() > 0 {
			return v, true
		}
	}
	return "", false
}
