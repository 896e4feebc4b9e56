package validate

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
	"stimlint/internal/view"
)

// ValidateRegistrations reports controller declarations that have no
// corresponding descriptor: a data-controller attribute (or fragment
// declaration) naming a controller that was never registered.
func (r *Runner) ValidateRegistrations() ([]Finding, error) {
	docs, err := view.LoadAll(r.Config.ViewsDir)
	if err != nil {
		return nil, err
	}
	cache := parser.NewCache()
	defer cache.Close()

	var findings []Finding
	for _, rel := range sortedKeys(docs) {
		doc := docs[rel]
		for _, name := range declaredControllers(doc, cache) {
			if _, ok := r.Controllers[name]; ok {
				continue
			}
			findings = append(findings, Finding{
				Kind:    MissingController,
				File:    rel,
				Line:    doc.AttrLine("data-controller", name),
				Message: fmt.Sprintf("controller %q is attached here but no controller file declares it", name),
				Suggestion: fmt.Sprintf("create %s_controller.js or fix the data-controller attribute",
					name),
			})
		}
	}
	return findings, nil
}

// ValidateTargets checks that every required target of every attached
// controller exists within the controller's scope. Optional and skip-marked
// targets are exempt; out-of-scope and missing get distinct kinds.
func (r *Runner) ValidateTargets() ([]Finding, error) {
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
			attr := "data-" + name + "-target"

			for _, target := range ctrl.Targets {
				if !ctrl.TargetRequired(target) {
					continue
				}
				query := func(root *tree_sitter.Node, source []byte) bool {
					return len(rubyast.FindTargets(root, source, name, target)) > 0
				}
				switch res.ResolveAttr(doc, hosts, attr, target, query) {
				case view.InScope:
				case view.OutOfScope:
					findings = append(findings, Finding{
						Kind:    TargetOutOfScope,
						File:    rel,
						Line:    doc.AttrLine(attr, target),
						Message: fmt.Sprintf("target %q of controller %q exists in this file but outside the controller's element", target, name),
						Suggestion: fmt.Sprintf("move the element carrying %s=%q inside the element with data-controller=%q",
							attr, target, name),
					})
				case view.NotFound:
					findings = append(findings, Finding{
						Kind:    MissingTarget,
						File:    rel,
						Line:    doc.AttrLine("data-controller", name),
						Message: fmt.Sprintf("controller %q requires target %q but no element declares it", name, target),
						Suggestion: fmt.Sprintf("add %s=%q to an element inside the controller's scope",
							attr, target),
					})
				}
			}
		}
	}
	return findings, nil
}
