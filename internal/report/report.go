// Package report renders validation findings: a categorized human-readable
// report with capped listings, a JSON form for machine consumption, and a
// single pass/fail signal.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"stimlint/internal/validate"
)

// Report wraps one run's findings.
type Report struct {
	Findings []validate.Finding
	// Cap bounds the verbose listing per category; overflow is summarized.
	Cap int
}

// OK is the machine-checkable assertion: zero findings.
func (r Report) OK() bool {
	return len(r.Findings) == 0
}

// byKind groups findings preserving each group's original order.
func (r Report) byKind() map[validate.Kind][]validate.Finding {
	groups := make(map[validate.Kind][]validate.Finding)
	for _, f := range r.Findings {
		groups[f.Kind] = append(groups[f.Kind], f)
	}
	return groups
}

var (
	headerColor  = color.New(color.FgRed, color.Bold)
	fileColor    = color.New(color.FgCyan)
	suggestColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen, color.Bold)
)

// Write renders the categorized report. Categories appear in canonical kind
// order with per-category counts; each listing is capped with a
// "fix these first" truncation line.
func (r Report) Write(w io.Writer) {
	if r.OK() {
		okColor.Fprintln(w, "✓ no wiring problems found")
		return
	}

	groups := r.byKind()
	for _, kind := range validate.Kinds {
		fs := groups[kind]
		if len(fs) == 0 {
			continue
		}
		headerColor.Fprintf(w, "%s (%d)\n", kind, len(fs))

		limit := len(fs)
		if r.Cap > 0 && limit > r.Cap {
			limit = r.Cap
		}
		for _, f := range fs[:limit] {
			fileColor.Fprintf(w, "  %s:%d", f.File, f.Line)
			fmt.Fprintf(w, "  %s\n", f.Message)
			if f.Suggestion != "" {
				suggestColor.Fprintf(w, "      ↳ %s\n", f.Suggestion)
			}
		}
		if rest := len(fs) - limit; rest > 0 {
			fmt.Fprintf(w, "  … %d more, fix these first\n", rest)
		}
		fmt.Fprintln(w)
	}
	headerColor.Fprintf(w, "%d findings\n", len(r.Findings))
}

// WriteJSON emits the finding list as JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	findings := r.Findings
	if findings == nil {
		findings = []validate.Finding{}
	}
	return enc.Encode(findings)
}
