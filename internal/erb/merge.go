package erb

import (
	"regexp"
	"strings"
)

// blockOpenerRe matches a fragment that ends by opening a Ruby block:
// `do` or `{`, optionally followed by a |params| list.
var blockOpenerRe = regexp.MustCompile(`(\bdo|\{)\s*(\|[^|]*\|)?\s*$`)

// controlOpenerRe matches statement keywords that open an end-terminated
// scope when they start a line. A trailing modifier (`x if y`) does not match.
var controlOpenerRe = regexp.MustCompile(`(?m)^\s*(if|unless|case|while|until|for|begin)\b`)

var (
	doRe  = regexp.MustCompile(`\bdo\b`)
	endRe = regexp.MustCompile(`\bend\b`)
)

// Merge re-joins fragments that together form one complete block construct:
// a fragment that opens a block (`<%= form_with ... do |f| %>`) is merged
// with every fragment up to and including its matching `<% end %>`.
//
// A single nesting counter is maintained over the merge window; nested opens
// inside the window fold into the same counter. That answers "does this span
// balance", which is all fragment reconstruction needs; it does not (and
// cannot) say which closer matches which opener. If the counter never
// returns to zero, or would go negative, the merge is abandoned and the
// original fragments are kept.
func Merge(frags []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	consumed := make([]bool, len(frags))

	for i, f := range frags {
		if consumed[i] {
			continue
		}
		if !opensBlock(f.Code) {
			out = append(out, f)
			continue
		}

		depth := 1
		codes := []string{f.Code}
		segs := []Segment{{Row: 0, Offset: f.Offset}}
		row := lineCount(f.Code)
		closedAt := -1
		for j := i + 1; j < len(frags); j++ {
			stripped := stripStrings(frags[j].Code)
			depth += openerCount(stripped) - closerCount(stripped)
			codes = append(codes, frags[j].Code)
			segs = append(segs, Segment{Row: row, Offset: frags[j].Offset})
			row += lineCount(frags[j].Code)
			if depth < 0 {
				break
			}
			if depth == 0 {
				closedAt = j
				break
			}
		}

		if closedAt < 0 {
			// Unbalanced to end of file (or counter underflow): keep the
			// opener as-is, never crash.
			out = append(out, f)
			continue
		}

		for j := i; j <= closedAt; j++ {
			consumed[j] = true
		}
		out = append(out, Fragment{
			Kind:     f.Kind,
			Code:     strings.Join(codes, "\n"),
			Offset:   f.Offset,
			Merged:   true,
			Segments: segs,
		})
	}

	return out
}

// opensBlock reports whether a fragment ends with a block opener and does
// not close it in the same fragment.
func opensBlock(code string) bool {
	stripped := stripStrings(code)
	if !blockOpenerRe.MatchString(stripped) {
		return false
	}
	return !endRe.MatchString(stripped) && !strings.Contains(stripped, "}")
}

func lineCount(code string) int {
	return strings.Count(code, "\n") + 1
}

func openerCount(stripped string) int {
	n := len(doRe.FindAllStringIndex(stripped, -1))
	n += strings.Count(stripped, "{")
	n += len(controlOpenerRe.FindAllStringIndex(stripped, -1))
	return n
}

func closerCount(stripped string) int {
	return len(endRe.FindAllStringIndex(stripped, -1)) + strings.Count(stripped, "}")
}

// stripStrings blanks the contents of single- and double-quoted string
// literals so keywords inside strings don't skew the nesting counter.
func stripStrings(code string) string {
	var b strings.Builder
	b.Grow(len(code))

	var quote byte
	escaped := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
				b.WriteByte(c)
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}
