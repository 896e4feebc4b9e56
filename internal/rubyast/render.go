package rubyast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"stimlint/internal/parser"
)

// RenderCall is a partial-render call site found in a fragment.
type RenderCall struct {
	Name string
	Row  uint
}

// FindRenderCalls returns every render call whose partial is named by a
// string literal, either as the first positional argument or under a
// partial: keyword.
func FindRenderCalls(root *tree_sitter.Node, source []byte) []RenderCall {
	var out []RenderCall
	parser.Walk(root, func(node *tree_sitter.Node) bool {
		// Parenless command calls surface under a distinct kind.
		if node.Kind() != "call" && node.Kind() != "command_call" {
			return true
		}
		method := node.ChildByFieldName("method")
		if method == nil || parser.NodeText(method, source) != "render" {
			return true
		}
		args := node.ChildByFieldName("arguments")
		if args == nil {
			return true
		}

		row := node.StartPosition().Row
		for i := uint(0); i < args.NamedChildCount(); i++ {
			arg := args.NamedChild(i)
			if arg == nil {
				continue
			}
			switch arg.Kind() {
			case "string":
				if name, ok := StringLiteral(arg, source); ok && name != "" {
					out = append(out, RenderCall{Name: name, Row: row})
				}
				// Only the first positional argument names the partial.
				return true
			case "pair":
				if key, ok := classifyKey(arg.ChildByFieldName("key"), source); ok && key.Name == "partial" {
					if name, ok := StringLiteral(arg.ChildByFieldName("value"), source); ok && name != "" {
						out = append(out, RenderCall{Name: name, Row: row})
						return true
					}
				}
			}
		}
		return true
	})
	return out
}
