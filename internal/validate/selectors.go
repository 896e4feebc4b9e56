package validate

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"stimlint/internal/parser"
	"stimlint/internal/view"
)

// ValidateSelectors checks the querySelector calls recorded in each
// controller descriptor: every literal selector must resolve to at least one
// element within the scope of some attachment of that controller. Template
// literals (dynamic selectors) and skip-marked entries are ignored. A
// selector that resolves only outside the controller's element is flagged as
// out-of-scope rather than missing; a selector that fails to compile is
// treated as matching nothing.
func (r *Runner) ValidateSelectors() ([]Finding, error) {
	docs, err := view.LoadAll(r.Config.ViewsDir)
	if err != nil {
		return nil, err
	}
	cache := parser.NewCache()
	defer cache.Close()

	// Attachment points per controller, across all views.
	attachments := map[string][]*view.Document{}
	for _, rel := range sortedKeys(docs) {
		doc := docs[rel]
		for _, name := range declaredControllers(doc, cache) {
			attachments[name] = append(attachments[name], doc)
		}
	}

	var findings []Finding
	for _, name := range r.Controllers.Names() {
		ctrl := r.Controllers[name]
		if ctrl.IsSystemController || len(ctrl.QuerySelectors) == 0 {
			continue
		}
		hostDocs := attachments[name]
		if len(hostDocs) == 0 {
			// Controller never attached; the registration/usage story is a
			// different validator's concern.
			continue
		}

		for _, qs := range ctrl.QuerySelectors {
			if qs.IsTemplate || qs.SkipValidation {
				continue
			}
			matcher, err := cascadia.Compile(qs.Selector)
			if err != nil {
				matcher = nil
			}

			inScope, anywhere := false, false
			for _, doc := range hostDocs {
				if matcher == nil {
					break
				}
				hosts := doc.Doc.Find(fmt.Sprintf("[data-controller~=%q]", name))
				if hosts.FindMatcher(matcher).Length() > 0 || hosts.FilterMatcher(matcher).Length() > 0 {
					inScope = true
					break
				}
				if doc.Doc.FindMatcher(matcher).Length() > 0 {
					anywhere = true
				}
			}
			if inScope {
				continue
			}

			kind, msg := MissingSelector,
				fmt.Sprintf("controller %q queries %q (%s, line %d) but no view element matches it", name, qs.Selector, qs.Method, qs.Line)
			if anywhere {
				kind = SelectorOutOfScope
				msg = fmt.Sprintf("controller %q queries %q (%s, line %d) which only matches outside the controller's element", name, qs.Selector, qs.Method, qs.Line)
			}
			findings = append(findings, Finding{
				Kind:       kind,
				File:       ctrl.SourceFile,
				Line:       qs.Line,
				Message:    msg,
				Suggestion: "add a matching element inside the controller's scope or scope the query differently",
			})
		}
	}
	return findings, nil
}
