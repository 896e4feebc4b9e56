package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var (
	rubyOnce sync.Once
	rubyLang *tree_sitter.Language
	rubyPool *sync.Pool
)

func initRuby() {
	rubyOnce.Do(func() {
		rubyLang = tree_sitter.NewLanguage(tree_sitter_ruby.Language())
		rubyPool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(rubyLang); err != nil {
					panic(fmt.Sprintf("set language: %v", err))
				}
				return p
			},
		}
	})
}

// ParseRuby parses Ruby source into a tree-sitter AST Tree.
// The caller must call tree.Close() when done.
// Parsers are pooled via sync.Pool to avoid per-fragment allocation.
func ParseRuby(source []byte) (*tree_sitter.Tree, error) {
	initRuby()

	p, _ := rubyPool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get ruby parser")
	}
	tree := p.Parse(source, nil)
	rubyPool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("ruby parse failed")
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
