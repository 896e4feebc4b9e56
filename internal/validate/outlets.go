package validate

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"stimlint/internal/naming"
	"stimlint/internal/parser"
	"stimlint/internal/view"
)

// ValidateOutlets checks every declared outlet: the host element must carry
// data-{controller}-{outlet}-outlet, its value must be a selector following
// the [data-controller...] convention, and that selector must match at least
// one element. Four failure shapes get four distinct kinds.
func (r *Runner) ValidateOutlets() ([]Finding, error) {
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
			ctrl, ok := r.Controllers[name]
			if !ok || ctrl.IsSystemController {
				continue
			}
			for _, outlet := range ctrl.Outlets {
				findings = append(findings, r.checkOutlet(docs, rel, doc, name, outlet)...)
			}
		}
	}
	return findings, nil
}

func (r *Runner) checkOutlet(docs map[string]*view.Document, rel string, doc *view.Document, controller, outlet string) []Finding {
	attr := "data-" + controller + "-" + naming.Kebab(outlet) + "-outlet"

	carriers := doc.Doc.Find("[" + attr + "]")
	if carriers.Length() == 0 {
		if variant, ok := probeOutletVariants(doc, controller, outlet); ok {
			return []Finding{{
				Kind:       OutletWrongAttr,
				File:       rel,
				Line:       doc.AttrLine(variant, ""),
				Message:    fmt.Sprintf("outlet %q of controller %q is spelled %s, expected %s", outlet, controller, variant, attr),
				Suggestion: fmt.Sprintf("rename the attribute to %s", attr),
			}}
		}
		return []Finding{{
			Kind:       MissingOutlet,
			File:       rel,
			Line:       doc.AttrLine("data-controller", controller),
			Message:    fmt.Sprintf("controller %q declares outlet %q but no element carries %s", controller, outlet, attr),
			Suggestion: fmt.Sprintf("add %s=\"[data-controller~='%s']\" to the controller's element", attr, naming.Kebab(outlet)),
		}}
	}

	var findings []Finding
	carriers.Each(func(_ int, sel *goquery.Selection) {
		selector, _ := sel.Attr(attr)

		if !strings.Contains(selector, "[data-controller") {
			findings = append(findings, Finding{
				Kind:       InvalidOutletSelector,
				File:       rel,
				Line:       doc.AttrLine(attr, selector),
				Message:    fmt.Sprintf("outlet selector %q does not follow the [data-controller...] convention", selector),
				Suggestion: fmt.Sprintf("use a selector like [data-controller~='%s']", naming.Kebab(outlet)),
			})
			return
		}

		// A selector that fails to compile is treated as matching nothing.
		matcher, err := cascadia.Compile(selector)
		matched := false
		if err == nil {
			for _, other := range docs {
				if other.Doc.FindMatcher(matcher).Length() > 0 {
					matched = true
					break
				}
			}
		}
		if !matched {
			findings = append(findings, Finding{
				Kind:       OutletTargetNotFound,
				File:       rel,
				Line:       doc.AttrLine(attr, selector),
				Message:    fmt.Sprintf("outlet selector %q matches no element in any view", selector),
				Suggestion: "render the outlet controller's element or fix the selector",
			})
		}
	})
	return findings
}

// probeOutletVariants checks the usual outlet misspellings: a -value suffix
// tacked on, the -outlet suffix missing, or underscores for hyphens.
func probeOutletVariants(doc *view.Document, controller, outlet string) (string, bool) {
	kebab := naming.Kebab(outlet)
	attr := "data-" + controller + "-" + kebab + "-outlet"
	variants := []string{
		attr + "-value",
		"data-" + controller + "-" + kebab,
		"data-" + controller + "-" + naming.Underscore(outlet) + "-outlet",
		"data-" + kebab + "-outlet",
	}
	for _, v := range variants {
		if v == attr {
			continue
		}
		if doc.Doc.Find("["+v+"]").Length() > 0 {
			return v, true
		}
	}
	return "", false
}
