package validate

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stimlint/internal/erb"
	"stimlint/internal/parser"
	"stimlint/internal/rubyast"
	"stimlint/internal/view"
)

// ValidateActions checks every action descriptor, literal attribute and
// fragment-declared alike. Scope is resolved first; only an in-scope action
// has its method name checked against the controller's declared methods. An
// unresolved scope short-circuits with a scope finding instead.
func (r *Runner) ValidateActions() ([]Finding, error) {
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
		findings = append(findings, r.attrActions(doc, res)...)
		findings = append(findings, r.fragmentActions(doc, res, cache)...)
	}
	return findings, nil
}

// attrActions validates literal data-action attributes in markup.
func (r *Runner) attrActions(doc *view.Document, res *view.Resolver) []Finding {
	var findings []Finding
	doc.Doc.Find("[data-action]").Each(func(_ int, sel *goquery.Selection) {
		value, _ := sel.Attr("data-action")
		for _, a := range rubyast.ParseActionAttr(value, "") {
			line := doc.AttrLine("data-action", value)
			if !res.ActionElementInScope(doc, sel, a.Controller) {
				findings = append(findings, r.actionScopeFinding(doc.RelPath, line, a))
				continue
			}
			if f, bad := r.actionMethodFinding(doc.RelPath, line, a); bad {
				findings = append(findings, f)
			}
		}
	})
	return findings
}

// fragmentActions validates actions declared through fragment attribute
// hashes; scope uses the line-range heuristic since the markup attribute
// does not exist until render time.
func (r *Runner) fragmentActions(doc *view.Document, res *view.Resolver, cache *parser.Cache) []Finding {
	var findings []Finding
	for _, frag := range doc.Fragments {
		code, ok := erb.Preprocess(frag.Code)
		if !ok {
			continue
		}
		tree, source, err := cache.Parse(code)
		if err != nil || tree == nil {
			continue
		}
		for _, a := range rubyast.FindActions(tree.RootNode(), source, "") {
			line := frag.LineOf(doc.Source, int(a.Row))
			if !res.FragmentActionInScope(doc, a.Controller, line) {
				findings = append(findings, r.actionScopeFinding(doc.RelPath, line, a))
				continue
			}
			if f, bad := r.actionMethodFinding(doc.RelPath, line, a); bad {
				findings = append(findings, f)
			}
		}
	}
	return findings
}

func (r *Runner) actionScopeFinding(file string, line int, a rubyast.Action) Finding {
	return Finding{
		Kind:    MissingActionScope,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf("action %q has no enclosing element with data-controller=%q", a.Raw, a.Controller),
		Suggestion: fmt.Sprintf("wrap this element in the controller's scope or attach data-controller=%q to an ancestor",
			a.Controller),
	}
}

// actionMethodFinding checks the parsed method against the controller's
// declared methods. Unknown controllers surface as MissingController here
// too: an action can reference a controller never attached in this file.
func (r *Runner) actionMethodFinding(file string, line int, a rubyast.Action) (Finding, bool) {
	ctrl, ok := r.Controllers[a.Controller]
	if !ok {
		return Finding{
			Kind:       MissingController,
			File:       file,
			Line:       line,
			Message:    fmt.Sprintf("action %q references controller %q which is not registered", a.Raw, a.Controller),
			Suggestion: fmt.Sprintf("create %s_controller.js or fix the action descriptor", a.Controller),
		}, true
	}
	if ctrl.IsSystemController {
		return Finding{}, false
	}
	if ctrl.HasMethod(a.Method) {
		return Finding{}, false
	}
	return Finding{
		Kind:    MissingMethod,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf("action %q calls %s#%s but the controller declares no such method", a.Raw, a.Controller, a.Method),
		Suggestion: fmt.Sprintf("declared methods: %s", strings.Join(ctrl.Methods, ", ")),
	}, true
}
