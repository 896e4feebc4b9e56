package rubyast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/parser"
)

// HashStringValue returns the literal string value of the first pair keyed
// name anywhere under root, taking the static prefix when the value string
// is interpolated.
func HashStringValue(root *tree_sitter.Node, source []byte, name string) (string, bool) {
	var result string
	found := false
	visitPairs(root, source, func(key Key, value, pair *tree_sitter.Node) {
		if found || key.Name != name {
			return
		}
		if value.Kind() == "string" {
			result, _ = StaticPrefix(value, source)
			found = true
		}
	})
	return result, found
}

// ResolveLocalString resolves an identifier to the string assigned to it by
// the nearest preceding assignment in the same file, taking the static
// prefix of interpolated strings. Used for broadcast stream names held in a
// local before the broadcast call.
func ResolveLocalString(root *tree_sitter.Node, source []byte, name string, beforeRow uint) (string, bool) {
	var result string
	found := false
	var bestRow uint

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "assignment" {
			return true
		}
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left == nil || right == nil {
			return true
		}
		if left.Kind() != "identifier" || parser.NodeText(left, source) != name {
			return true
		}
		row := node.StartPosition().Row
		if row >= beforeRow {
			return true
		}
		if right.Kind() != "string" {
			return true
		}
		if !found || row > bestRow {
			result, _ = StaticPrefix(right, source)
			found = true
			bestRow = row
		}
		return true
	})
	return result, found
}
