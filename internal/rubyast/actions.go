package rubyast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Action is one parsed action descriptor token:
// [event->]controller#method[@option].
type Action struct {
	Event      string
	Controller string
	Method     string
	Option     string
	Raw        string
	Row        uint
}

// ParseActionToken parses a single action descriptor token. The event part
// is optional and may itself carry an @ qualifier (resize@window); an
// @option after the method name is split off separately.
func ParseActionToken(tok string) (Action, bool) {
	a := Action{Raw: tok}

	rest := tok
	if i := strings.Index(tok, "->"); i >= 0 {
		a.Event = tok[:i]
		rest = tok[i+2:]
	}

	hash := strings.Index(rest, "#")
	if hash < 0 {
		return Action{}, false
	}
	a.Controller = rest[:hash]
	a.Method = rest[hash+1:]

	if j := strings.Index(a.Method, "@"); j >= 0 {
		a.Option = a.Method[j+1:]
		a.Method = a.Method[:j]
	}

	if a.Controller == "" || a.Method == "" {
		return Action{}, false
	}
	return a, true
}

// ParseActionAttr tokenizes a data-action attribute value on whitespace and
// parses each token, keeping only those that parse and, when filter is
// non-empty, name the filtered controller.
func ParseActionAttr(value, filter string) []Action {
	var out []Action
	for _, tok := range strings.Fields(value) {
		a, ok := ParseActionToken(tok)
		if !ok {
			continue
		}
		if filter != "" && a.Controller != filter {
			continue
		}
		out = append(out, a)
	}
	return out
}

// FindActions returns every action descriptor declared in the fragment via a
// pair keyed "action" (string or symbol) with a literal string value. When
// filter is non-empty only tokens naming that controller are returned.
func FindActions(root *tree_sitter.Node, source []byte, filter string) []Action {
	var out []Action
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		if key.Name != "action" {
			return
		}
		v, ok := StringLiteral(value, source)
		if !ok {
			return
		}
		for _, a := range ParseActionAttr(v, filter) {
			a.Row = pair.StartPosition().Row
			out = append(out, a)
		}
	})
	return out
}
