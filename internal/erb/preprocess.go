package erb

import (
	"regexp"
	"strings"
)

// wiringKeywords gate the heavier fixups: a fragment that mentions none of
// these cannot carry Stimulus wiring and is not worth a parse.
var wiringKeywords = []string{"data", "controller", "target", "action", "value"}

var (
	controlFlowRe = regexp.MustCompile(`^(if|elsif|else|unless|case|when|in|while|until|for|begin|rescue|ensure|end)\b`)
	definitionRe  = regexp.MustCompile(`^(def|class|module)\b`)

	// Fragments that are already safe to parse as-is.
	bareCallRe     = regexp.MustCompile(`^[@A-Za-z_][\w.@]*[!?]?$`)
	simpleAssignRe = regexp.MustCompile(`^[@a-z_]\w*\s*=\s*\S+$`)
)

// Preprocess heuristically completes a fragment's code so it parses in
// isolation, auto-closing unbalanced do/brace/bracket/paren constructs.
// The returned bool reports whether the fragment is worth parsing at all:
// fragments with no wiring keyword, and control-flow or definition fragments
// (which completing would only mangle), are returned verbatim with false.
//
// Preprocessing is idempotent: a second application returns its input.
func Preprocess(code string) (string, bool) {
	if !hasWiringKeyword(code) {
		return code, false
	}

	trimmed := strings.TrimSpace(code)
	if controlFlowRe.MatchString(trimmed) || definitionRe.MatchString(trimmed) {
		return code, false
	}
	if bareCallRe.MatchString(trimmed) || simpleAssignRe.MatchString(trimmed) {
		return code, true
	}

	return autoClose(code), true
}

func hasWiringKeyword(code string) bool {
	for _, kw := range wiringKeywords {
		if strings.Contains(code, kw) {
			return true
		}
	}
	return false
}

// autoClose appends the closers a truncated fragment is missing: one `end`
// per unmatched `do`, then enough closing braces/brackets/parens to balance
// each pair independently. Best effort: delimiters hidden in unstripped
// constructs can still defeat it, in which case the parse fails and the
// fragment is skipped upstream.
func autoClose(code string) string {
	stripped := stripStrings(code)
	fixed := code

	if n := len(doRe.FindAllStringIndex(stripped, -1)) - len(endRe.FindAllStringIndex(stripped, -1)); n > 0 {
		fixed += strings.Repeat("\nend", n)
		stripped += strings.Repeat("\nend", n)
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}, {"(", ")"}} {
		if n := strings.Count(stripped, pair[0]) - strings.Count(stripped, pair[1]); n > 0 {
			fixed += strings.Repeat(pair[1], n)
		}
	}
	return fixed
}
