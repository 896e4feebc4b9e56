package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func TestParseRubyAndWalk(t *testing.T) {
	source := []byte(`tag.div(data: {controller: "chat"})`)
	tree, err := ParseRuby(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	var calls, strs int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "call":
			calls++
		case "string_content":
			strs++
			if got := NodeText(n, source); got != "chat" {
				t.Errorf("NodeText = %q, want chat", got)
			}
		}
		return true
	})
	if calls == 0 {
		t.Error("no call nodes visited")
	}
	if strs != 1 {
		t.Errorf("visited %d string_content nodes, want 1", strs)
	}
}

func TestWalkPrune(t *testing.T) {
	source := []byte(`foo(bar(baz))`)
	tree, err := ParseRuby(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	var visited int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		visited++
		// Stop descending at the first call: inner calls stay unvisited.
		return n.Kind() != "call"
	})

	var all int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		all++
		return true
	})
	if visited >= all {
		t.Errorf("pruned walk visited %d of %d nodes", visited, all)
	}
}

func TestCacheMemoizes(t *testing.T) {
	c := NewCache()
	defer c.Close()

	t1, s1, err := c.Parse(`x = 1`)
	if err != nil || t1 == nil {
		t.Fatalf("first parse: %v", err)
	}
	t2, s2, err := c.Parse(`x = 1`)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if t1 != t2 {
		t.Error("same code produced distinct trees")
	}
	if &s1[0] != &s2[0] {
		t.Error("same code produced distinct source buffers")
	}

	t3, _, err := c.Parse(`y = 2`)
	if err != nil || t3 == nil {
		t.Fatalf("third parse: %v", err)
	}
	if t3 == t1 {
		t.Error("different code shared a tree")
	}
}
