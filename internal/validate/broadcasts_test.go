package validate

import (
	"strings"
	"testing"

	"stimlint/internal/descriptor"
)

func chatController(methods ...string) *descriptor.Controller {
	return &descriptor.Controller{
		Name:       "chat",
		Methods:    methods,
		SourceFile: "app/javascript/controllers/chat_controller.js",
	}
}

func TestBroadcastClean(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/chat_channel.rb", `class ChatChannel < ApplicationCable::Channel
  def speak(data)
    ActionCable.server.broadcast("chat_#{params[:room]}", type: 'new-message', body: data["body"])
  end
end
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	if fs := p.runOne(r, "broadcasts"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestBroadcastMissingHandler(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/chat_channel.rb", `ActionCable.server.broadcast("chat_#{id}", type: 'new-message')
`)
	p.descriptors(chatController("connect"))
	r := p.runner()

	fs := p.runOne(r, "broadcasts")
	if len(fs) != 1 || fs[0].Kind != BroadcastMissingHandler {
		t.Fatalf("findings = %+v, want one missing-handler", fs)
	}
	if want := "handleNewMessage"; !strings.Contains(fs[0].Message, want) {
		t.Errorf("message %q does not name %s", fs[0].Message, want)
	}
}

func TestBroadcastMissingFrontendFile(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/metrics_channel.rb", `ActionCable.server.broadcast("metrics_1", type: 'tick')
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	fs := p.runOne(r, "broadcasts")
	if len(fs) != 1 || fs[0].Kind != BroadcastMissingFrontendFile {
		t.Fatalf("findings = %+v, want one missing-frontend-file", fs)
	}
}

func TestBroadcastMissingType(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/chat_channel.rb", `ActionCable.server.broadcast("chat_1", body: "hi")
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	fs := p.runOne(r, "broadcasts")
	if len(fs) != 1 || fs[0].Kind != BroadcastMissingType {
		t.Fatalf("findings = %+v, want one missing-type", fs)
	}
}

func TestBroadcastLocalVariableStream(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/chat_channel.rb", `def notify
  stream = "chat_#{room.id}"
  ActionCable.server.broadcast(stream, type: 'new-message')
end
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	if fs := p.runOne(r, "broadcasts"); len(fs) != 0 {
		t.Errorf("local-variable stream not resolved: %+v", fs)
	}
}

func TestBroadcastSkipDirective(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/legacy_channel.rb", `# stimlint:disable legacy stream, no frontend
ActionCable.server.broadcast("legacy_1", body: "x")
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	if fs := p.runOne(r, "broadcasts"); len(fs) != 0 {
		t.Errorf("directive-suppressed broadcast reported: %+v", fs)
	}
}

func TestBroadcastDynamicStreamSkipped(t *testing.T) {
	p := newProject(t)
	p.write("app/channels/chat_channel.rb", `ActionCable.server.broadcast(compute_stream, type: 'new-message')
`)
	p.descriptors(chatController("handleNewMessage"))
	r := p.runner()

	// No static prefix resolvable: nothing to validate.
	if fs := p.runOne(r, "broadcasts"); len(fs) != 0 {
		t.Errorf("unresolvable stream reported: %+v", fs)
	}
}
