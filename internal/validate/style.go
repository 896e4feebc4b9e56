package validate

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stimlint/internal/view"
)

// ValidateColorClasses flags raw palette utility classes in view markup.
// Entries ending in "-" are prefixes ("text-red-" catches text-red-500);
// other entries match exactly.
func (r *Runner) ValidateColorClasses() ([]Finding, error) {
	if len(r.Config.ForbiddenColorClasses) == 0 {
		return nil, nil
	}
	docs, err := view.LoadAll(r.Config.ViewsDir)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, rel := range sortedKeys(docs) {
		doc := docs[rel]
		doc.Doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
			value, _ := sel.Attr("class")
			for _, cls := range strings.Fields(value) {
				if !forbiddenClass(cls, r.Config.ForbiddenColorClasses) {
					continue
				}
				findings = append(findings, Finding{
					Kind:       ForbiddenColorClass,
					File:       rel,
					Line:       doc.AttrLine("class", value),
					Message:    fmt.Sprintf("raw color class %q used in markup", cls),
					Suggestion: "use a semantic class instead of a palette color",
				})
			}
		})
	}
	return findings, nil
}

func forbiddenClass(cls string, forbidden []string) bool {
	for _, f := range forbidden {
		if strings.HasSuffix(f, "-") {
			if strings.HasPrefix(cls, f) {
				return true
			}
		} else if cls == f {
			return true
		}
	}
	return false
}

// ValidateArchitecture surfaces the anti-patterns the metadata extractor
// flagged in controller sources. Detection happened upstream; this layer
// reports them alongside everything else so one run covers both sides.
func (r *Runner) ValidateArchitecture() ([]Finding, error) {
	var findings []Finding
	for _, name := range r.Controllers.Names() {
		ctrl := r.Controllers[name]
		for _, ap := range ctrl.AntiPatterns {
			findings = append(findings, Finding{
				Kind:    ArchitectureViolation,
				File:    ctrl.SourceFile,
				Line:    ap.Line,
				Message: ap.Message,
			})
		}
	}
	return findings, nil
}
