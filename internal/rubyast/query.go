// Package rubyast finds Stimulus wiring shapes in parsed Ruby fragments:
// hash pairs declaring controllers, targets, values, and actions, whether
// they appear in hash literals or in the argument lists of helper calls.
//
// All queries share one traversal: walk the whole tree, classify every pair
// node, and recurse into every child regardless of match, so a single
// fragment can yield matches across nested structures.
package rubyast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/naming"
	"stimlint/internal/parser"
)

// KeyKind tags the two hash key spellings a wiring declaration may use.
type KeyKind int

const (
	StringKey KeyKind = iota
	SymbolKey
)

// Key is a classified hash key.
type Key struct {
	Kind KeyKind
	Name string
}

// Match records where a query hit inside a fragment's tree.
// Row is 0-based relative to the fragment's first line.
type Match struct {
	Row uint
}

// pairVisitor receives every hash pair in the tree whose key is a plain
// string or symbol. value is the pair's value node.
type pairVisitor func(key Key, value *tree_sitter.Node, pair *tree_sitter.Node)

// visitPairs is the shared walk-and-classify traversal behind every query.
func visitPairs(root *tree_sitter.Node, source []byte, fn pairVisitor) {
	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "pair" {
			return true
		}
		keyNode := node.ChildByFieldName("key")
		valueNode := node.ChildByFieldName("value")
		if keyNode == nil || valueNode == nil {
			return true
		}
		if key, ok := classifyKey(keyNode, source); ok {
			fn(key, valueNode, node)
		}
		return true
	})
}

func classifyKey(node *tree_sitter.Node, source []byte) (Key, bool) {
	switch node.Kind() {
	case "string":
		if s, ok := StringLiteral(node, source); ok {
			return Key{Kind: StringKey, Name: s}, true
		}
	case "hash_key_symbol":
		return Key{Kind: SymbolKey, Name: strings.TrimSuffix(parser.NodeText(node, source), ":")}, true
	case "simple_symbol":
		return Key{Kind: SymbolKey, Name: strings.TrimPrefix(parser.NodeText(node, source), ":")}, true
	case "delimited_symbol":
		// :"accordion-target", a symbol spelled with quotes to allow hyphens.
		text := strings.TrimPrefix(parser.NodeText(node, source), ":")
		text = strings.Trim(text, `"'`)
		return Key{Kind: SymbolKey, Name: text}, true
	}
	return Key{}, false
}

// StringLiteral returns the literal text of a string node. ok is false when
// the node is not a string or contains interpolation.
func StringLiteral(node *tree_sitter.Node, source []byte) (string, bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	var b strings.Builder
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_content":
			b.WriteString(parser.NodeText(child, source))
		case "interpolation":
			return "", false
		case "escape_sequence":
			b.WriteString(parser.NodeText(child, source))
		}
	}
	return b.String(), true
}

// StaticPrefix returns the literal prefix of a string node up to its first
// interpolation. complete is true when the whole string is literal.
func StaticPrefix(node *tree_sitter.Node, source []byte) (prefix string, complete bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	var b strings.Builder
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_content", "escape_sequence":
			b.WriteString(parser.NodeText(child, source))
		case "interpolation":
			return b.String(), false
		}
	}
	return b.String(), true
}

// FindTargets returns every pair declaring the given target for the given
// controller, in either the string-key form ("accordion-target" => "panel")
// or the symbol-key form (accordion_target: "panel"), including pairs inside
// call-argument hashes.
func FindTargets(root *tree_sitter.Node, source []byte, controller, target string) []Match {
	stringKey := controller + "-target"
	symbolUnderscore := naming.Underscore(controller) + "_target"
	symbolHyphen := controller + "-target"

	var out []Match
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		switch key.Kind {
		case StringKey:
			if key.Name != stringKey {
				return
			}
		case SymbolKey:
			if key.Name != symbolUnderscore && key.Name != symbolHyphen {
				return
			}
		}
		if v, ok := StringLiteral(value, source); ok && v == target {
			out = append(out, Match{Row: pair.StartPosition().Row})
		}
	})
	return out
}

// FindValues returns every pair declaring the given value for the given
// controller. valueName is the controller property name (camelCase); both
// hyphen and underscore key spellings are accepted.
func FindValues(root *tree_sitter.Node, source []byte, controller, valueName string) []Match {
	kebab := naming.Kebab(valueName)
	stringKey := controller + "-" + kebab + "-value"
	symbolUnderscore := naming.Underscore(controller) + "_" + naming.Underscore(valueName) + "_value"

	var out []Match
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		switch key.Kind {
		case StringKey:
			if key.Name != stringKey {
				return
			}
		case SymbolKey:
			if key.Name != symbolUnderscore && key.Name != stringKey {
				return
			}
		}
		out = append(out, Match{Row: pair.StartPosition().Row})
	})
	return out
}

// HasController reports whether the fragment declares the named controller
// anywhere: a pair keyed "controller" (string or symbol) whose value lists
// the name. Values may attach several controllers, so membership is checked
// per whitespace-separated token.
func HasController(root *tree_sitter.Node, source []byte, name string) bool {
	found := false
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		if found || key.Name != "controller" {
			return
		}
		if v, ok := StringLiteral(value, source); ok {
			for _, tok := range strings.Fields(v) {
				if tok == name {
					found = true
					return
				}
			}
		}
	})
	return found
}

// ControllerNames returns every controller name declared in the fragment.
func ControllerNames(root *tree_sitter.Node, source []byte) []string {
	var names []string
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		if key.Name != "controller" {
			return
		}
		if v, ok := StringLiteral(value, source); ok {
			names = append(names, strings.Fields(v)...)
		}
	})
	return names
}
