package validate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"stimlint/internal/config"
	"stimlint/internal/descriptor"
)

// project builds a throwaway Rails-shaped tree and returns a ready config.
type project struct {
	t    *testing.T
	root string
	cfg  *config.Config
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.ViewsDir = filepath.Join(root, "app", "views")
	cfg.ChannelsDirs = []string{filepath.Join(root, "app", "channels")}
	cfg.DescriptorFile = filepath.Join(root, "descriptors.json")
	if err := os.MkdirAll(cfg.ViewsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &project{t: t, root: root, cfg: cfg}
}

func (p *project) write(rel, content string) {
	p.t.Helper()
	abs := filepath.Join(p.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		p.t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		p.t.Fatal(err)
	}
}

func (p *project) descriptors(ctrls ...*descriptor.Controller) {
	p.t.Helper()
	raw, err := json.Marshal(ctrls)
	if err != nil {
		p.t.Fatal(err)
	}
	if err := os.WriteFile(p.cfg.DescriptorFile, raw, 0o644); err != nil {
		p.t.Fatal(err)
	}
}

func (p *project) runner() *Runner {
	p.t.Helper()
	r, err := NewRunner(context.Background(), p.cfg)
	if err != nil {
		p.t.Fatal(err)
	}
	p.t.Cleanup(r.Close)
	return r
}

func (p *project) runOne(r *Runner, name string) []Finding {
	p.t.Helper()
	fs, err := r.RunOne(name)
	if err != nil {
		p.t.Fatal(err)
	}
	return fs
}

func accordionController() *descriptor.Controller {
	return &descriptor.Controller{
		Name:       "accordion",
		Targets:    []string{"panel"},
		Methods:    []string{"toggle"},
		SourceFile: "app/javascript/controllers/accordion_controller.js",
	}
}

func TestEndToEndAccordionClean(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion">
  <div data-accordion-target="panel"></div>
  <button data-action="click->accordion#toggle">Toggle</button>
</div>
`)
	p.descriptors(accordionController())
	r := p.runner()

	for _, pass := range []string{"registrations", "targets", "actions"} {
		if fs := p.runOne(r, pass); len(fs) != 0 {
			t.Errorf("%s: unexpected findings %+v", pass, fs)
		}
	}
}

func TestEndToEndActionOutsideScope(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion">
  <div data-accordion-target="panel"></div>
</div>
<button data-action="click->accordion#toggle">Toggle</button>
`)
	p.descriptors(accordionController())
	r := p.runner()

	fs := p.runOne(r, "actions")
	if len(fs) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(fs), fs)
	}
	if fs[0].Kind != MissingActionScope {
		t.Errorf("kind = %s, want %s", fs[0].Kind, MissingActionScope)
	}
	// Scope unresolved: the method check must not run, even though #toggle
	// does exist.
	for _, f := range fs {
		if f.Kind == MissingMethod {
			t.Errorf("method check ran despite unresolved scope: %+v", f)
		}
	}
}

func TestTargetStates(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion"></div>
<div data-accordion-target="panel"></div>
`)
	p.write("app/views/todos/show.html.erb", `<div data-controller="accordion"></div>
`)
	p.descriptors(accordionController())
	r := p.runner()

	fs := p.runOne(r, "targets")
	if len(fs) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(fs), fs)
	}
	if fs[0].File != "todos/index.html.erb" || fs[0].Kind != TargetOutOfScope {
		t.Errorf("index finding = %+v, want target-out-of-scope", fs[0])
	}
	if fs[1].File != "todos/show.html.erb" || fs[1].Kind != MissingTarget {
		t.Errorf("show finding = %+v, want missing-target", fs[1])
	}
}

func TestTargetInRenderedPartial(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion"><%= render "panel" %></div>
`)
	p.write("app/views/todos/_panel.html.erb", `<div data-accordion-target="panel"></div>
`)
	p.descriptors(accordionController())
	r := p.runner()

	if fs := p.runOne(r, "targets"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestActionInPartialWithControllerInParent(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion"><%= render "toggle" %></div>
`)
	p.write("app/views/todos/_toggle.html.erb", `<button data-action="click->accordion#toggle">T</button>
`)
	p.descriptors(accordionController())
	r := p.runner()

	if fs := p.runOne(r, "actions"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestFragmentActionInMergedBlockInScope(t *testing.T) {
	// The action sits in a later constituent of a merged form_with block,
	// with markup lines between the tags. Its source line (7) is inside the
	// controller div (lines 6-8), so no finding.
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<%= form_with model: @todo do |f| %>
<p>a</p>
<p>b</p>
<p>c</p>
<p>d</p>
<div data-controller="accordion">
  <%= f.submit "Go", data: {action: "click->accordion#toggle"} %>
</div>
<% end %>
`)
	p.descriptors(accordionController())
	r := p.runner()

	if fs := p.runOne(r, "actions"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestFragmentActionInMergedBlockOutOfScope(t *testing.T) {
	// Same merged shape, but the action's source line (9) is below the
	// controller div's close: one scope finding at the real line, and the
	// method check stays skipped.
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<%= form_with model: @todo do |f| %>
<p>a</p>
<p>b</p>
<p>c</p>
<p>d</p>
<div data-controller="accordion">
  <span>x</span>
</div>
<%= f.submit "Go", data: {action: "click->accordion#toggle"} %>
<% end %>
`)
	p.descriptors(accordionController())
	r := p.runner()

	fs := p.runOne(r, "actions")
	if len(fs) != 1 || fs[0].Kind != MissingActionScope {
		t.Fatalf("findings = %+v, want one missing-action-scope", fs)
	}
	if fs[0].Line != 9 {
		t.Errorf("line = %d, want 9", fs[0].Line)
	}
}

func TestTargetSkipDirectiveRespected(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion"></div>
`)
	ctrl := accordionController()
	ctrl.TargetsWithSkip = []string{"panel"}
	p.descriptors(ctrl)
	r := p.runner()

	if fs := p.runOne(r, "targets"); len(fs) != 0 {
		t.Errorf("skip-marked target reported: %+v", fs)
	}
}

func TestOptionalTargetNotRequired(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion"></div>
`)
	ctrl := accordionController()
	ctrl.OptionalTargets = []string{"panel"}
	p.descriptors(ctrl)
	r := p.runner()

	if fs := p.runOne(r, "targets"); len(fs) != 0 {
		t.Errorf("optional target reported: %+v", fs)
	}
}

func TestRegistrationMissingController(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="ghost"></div>
`)
	p.descriptors(accordionController())
	r := p.runner()

	fs := p.runOne(r, "registrations")
	if len(fs) != 1 || fs[0].Kind != MissingController {
		t.Fatalf("findings = %+v, want one missing-controller", fs)
	}
}

func TestMissingMethodInScope(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="accordion">
  <button data-action="click->accordion#collapse">C</button>
</div>
`)
	p.descriptors(accordionController())
	r := p.runner()

	fs := p.runOne(r, "actions")
	if len(fs) != 1 || fs[0].Kind != MissingMethod {
		t.Fatalf("findings = %+v, want one missing-method", fs)
	}
}

func TestSystemControllerExempt(t *testing.T) {
	p := newProject(t)
	p.write("app/views/todos/index.html.erb", `<div data-controller="turbo-frame">
  <button data-action="click->turbo-frame#anything">B</button>
</div>
`)
	p.descriptors(&descriptor.Controller{Name: "turbo-frame", IsSystemController: true})
	r := p.runner()

	for _, pass := range []string{"registrations", "targets", "actions"} {
		if fs := p.runOne(r, pass); len(fs) != 0 {
			t.Errorf("%s: system controller validated: %+v", pass, fs)
		}
	}
}
