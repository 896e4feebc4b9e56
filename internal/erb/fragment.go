// Package erb extracts embedded Ruby fragments from ERB templates and
// reassembles block constructs that span multiple tags, so that downstream
// AST queries see parseable units. Extraction is purely lexical; nothing is
// parsed at this stage.
package erb

import "strings"

// FragmentKind distinguishes output-interpolating tags from statement tags.
type FragmentKind int

const (
	// Output is a value-interpolating fragment (<%= ... %>).
	Output FragmentKind = iota
	// Execution is a statement fragment (<% ... %>).
	Execution
)

func (k FragmentKind) String() string {
	if k == Output {
		return "output"
	}
	return "execution"
}

// Fragment is one lexically-delimited span of embedded Ruby.
// Offset is the byte offset of the first code character in the template,
// which maps back to a line number via LineAt. Fragments are ordered by
// source position; order matters for merge adjacency.
type Fragment struct {
	Kind   FragmentKind
	Code   string
	Offset int
	Merged bool
	// Segments ties rows of merged Code back to the constituent tags. The
	// markup lines between merged tags do not appear in Code, so rows past
	// the opener cannot be mapped by simple addition. Nil for unmerged
	// fragments.
	Segments []Segment
}

// Segment records where a run of merged-code rows came from: the first row
// it occupies in Code and the byte offset of its first code character.
type Segment struct {
	Row    int
	Offset int
}

// Line returns the 1-based line of the fragment in src.
func (f Fragment) Line(src string) int {
	return LineAt(src, f.Offset)
}

// LineOf returns the 1-based source line of a 0-based row within the
// fragment's code. Merged fragments map the row through the segment it
// belongs to; rows appended by preprocessing extrapolate past the last
// segment.
func (f Fragment) LineOf(src string, row int) int {
	if len(f.Segments) == 0 {
		return LineAt(src, f.Offset) + row
	}
	seg := f.Segments[0]
	for _, s := range f.Segments[1:] {
		if s.Row > row {
			break
		}
		seg = s
	}
	return LineAt(src, seg.Offset) + (row - seg.Row)
}

// LineAt returns the 1-based line number at a byte offset.
func LineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return 1 + strings.Count(src[:offset], "\n")
}

// Extract splits template text into Ruby fragments, preserving offsets.
// Comment tags (<%# ... %>) are dropped. A tag's code is exactly the text
// between its delimiters; unbalanced Ruby inside a single tag is fine here.
func Extract(src string) []Fragment {
	var frags []Fragment

	for i := 0; i < len(src); {
		open := strings.Index(src[i:], "<%")
		if open < 0 {
			break
		}
		start := i + open + 2

		kind := Execution
		switch {
		case start < len(src) && src[start] == '#':
			// Comment tag: skip past its closer.
			if end := strings.Index(src[start:], "%>"); end >= 0 {
				i = start + end + 2
			} else {
				i = len(src)
			}
			continue
		case start < len(src) && src[start] == '=':
			kind = Output
			start++
			// Tolerate <%== (raw output).
			if start < len(src) && src[start] == '=' {
				start++
			}
		case start < len(src) && src[start] == '-':
			start++
		}

		end := strings.Index(src[start:], "%>")
		if end < 0 {
			break
		}
		inner := src[start : start+end]
		i = start + end + 2

		// A - directly before the closer is the -%> trim marker; a - with
		// whitespace after it is code.
		inner = strings.TrimSuffix(inner, "-")
		code := strings.TrimRight(inner, " \t")

		// Advance the offset past leading whitespace so line numbers point
		// at the code itself.
		offset := start
		for len(code) > 0 && (code[0] == ' ' || code[0] == '\t' || code[0] == '\n' || code[0] == '\r') {
			code = code[1:]
			offset++
		}
		code = strings.TrimRight(code, " \t\r\n")
		if code == "" {
			continue
		}

		frags = append(frags, Fragment{Kind: kind, Code: code, Offset: offset})
	}

	return frags
}
