package view

import (
	"testing"

	"stimlint/internal/parser"
)

func TestPartialPath(t *testing.T) {
	cases := []struct {
		from, name, want string
	}{
		{"todos/index.html.erb", "form", "todos/_form.html.erb"},
		{"todos/index.html.erb", "shared/header", "shared/_header.html.erb"},
		{"layouts/application.html.erb", "shared/nav/links", "shared/nav/_links.html.erb"},
	}
	for _, c := range cases {
		if got := PartialPath(c.from, c.name); got != c.want {
			t.Errorf("PartialPath(%q, %q) = %q, want %q", c.from, c.name, got, c.want)
		}
	}
}

func TestBuildPartialRefs(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, "todos/index.html.erb", `<div><%= render "form" %></div>`)
	writeView(t, root, "todos/_form.html.erb", `<form></form>`)
	writeView(t, root, "layouts/application.html.erb", `<%= render partial: "shared/header" %>`)
	writeView(t, root, "shared/_header.html.erb", `<header></header>`)

	docs, err := LoadAll(root)
	if err != nil {
		t.Fatal(err)
	}
	cache := parser.NewCache()
	defer cache.Close()

	refs := BuildPartialRefs(docs, cache)

	if got := refs.Parents["todos/_form.html.erb"]; len(got) != 1 || got[0] != "todos/index.html.erb" {
		t.Errorf("form parents = %v", got)
	}
	if got := refs.Parents["shared/_header.html.erb"]; len(got) != 1 || got[0] != "layouts/application.html.erb" {
		t.Errorf("header parents = %v", got)
	}
	if got := refs.Children["todos/index.html.erb"]; len(got) != 1 || got[0] != "todos/_form.html.erb" {
		t.Errorf("index children = %v", got)
	}
}

func TestControllerInAncestors(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, "todos/index.html.erb", `<div data-controller="accordion"><%= render "form" %></div>`)
	writeView(t, root, "todos/_form.html.erb", `<%= render "field" %>`)
	writeView(t, root, "todos/_field.html.erb", `<input>`)
	writeView(t, root, "misc/orphan.html.erb", `<p></p>`)

	docs, err := LoadAll(root)
	if err != nil {
		t.Fatal(err)
	}
	cache := parser.NewCache()
	defer cache.Close()

	refs := BuildPartialRefs(docs, cache)

	if !refs.ControllerInAncestors("todos/_form.html.erb", "accordion", cache) {
		t.Error("direct parent carries the controller")
	}
	// Partial-of-partial: _field is rendered by _form which is rendered by
	// index, where the controller lives.
	if !refs.ControllerInAncestors("todos/_field.html.erb", "accordion", cache) {
		t.Error("grandparent carries the controller")
	}
	if refs.ControllerInAncestors("todos/_form.html.erb", "gallery", cache) {
		t.Error("gallery is declared nowhere")
	}
	if refs.ControllerInAncestors("misc/orphan.html.erb", "accordion", cache) {
		t.Error("orphan has no parents")
	}
}

func TestDiscoverViewsSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, "b/two.html.erb", `<p></p>`)
	writeView(t, root, "a/one.html.erb", `<p></p>`)
	writeView(t, root, "a/readme.md", `not a view`)

	rels, err := DiscoverViews(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 2 || rels[0] != "a/one.html.erb" || rels[1] != "b/two.html.erb" {
		t.Errorf("rels = %v", rels)
	}
}
