package validate

import (
	"testing"

	"stimlint/internal/descriptor"
)

func chatWithValue() *descriptor.Controller {
	return &descriptor.Controller{
		Name:       "chat",
		Values:     []string{"roomId"},
		SourceFile: "app/javascript/controllers/chat_controller.js",
	}
}

func TestValueSupplied(t *testing.T) {
	p := newProject(t)
	p.write("app/views/chat/show.html.erb", `<div data-controller="chat" data-chat-room-id-value="7"></div>
`)
	p.descriptors(chatWithValue())
	r := p.runner()

	if fs := p.runOne(r, "values"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestValueSuppliedViaFragment(t *testing.T) {
	p := newProject(t)
	p.write("app/views/chat/show.html.erb", `<%= tag.div nil, data: {controller: "chat", chat_room_id_value: @room.id} %>
`)
	p.descriptors(chatWithValue())
	r := p.runner()

	if fs := p.runOne(r, "values"); len(fs) != 0 {
		t.Errorf("unexpected findings %+v", fs)
	}
}

func TestValueMissing(t *testing.T) {
	p := newProject(t)
	p.write("app/views/chat/show.html.erb", `<div data-controller="chat"></div>
`)
	p.descriptors(chatWithValue())
	r := p.runner()

	fs := p.runOne(r, "values")
	if len(fs) != 1 || fs[0].Kind != MissingValue {
		t.Fatalf("findings = %+v, want one missing-value", fs)
	}
}

func TestValueWrongFormatProbed(t *testing.T) {
	cases := []struct {
		name string
		html string
	}{
		{"missing controller prefix", `<div data-controller="chat" data-room-id-value="7"></div>`},
		{"missing value suffix", `<div data-controller="chat" data-chat-room-id="7"></div>`},
		{"underscored", `<div data-controller="chat" data-chat-room_id-value="7"></div>`},
		{"suffix misplaced", `<div data-controller="chat" data-chat-value-room-id="7"></div>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newProject(t)
			p.write("app/views/chat/show.html.erb", c.html+"\n")
			p.descriptors(chatWithValue())
			r := p.runner()

			fs := p.runOne(r, "values")
			if len(fs) != 1 || fs[0].Kind != ValueWrongFormat {
				t.Fatalf("findings = %+v, want one value-wrong-format", fs)
			}
		})
	}
}

func TestValueWithDefaultNotRequired(t *testing.T) {
	p := newProject(t)
	p.write("app/views/chat/show.html.erb", `<div data-controller="chat"></div>
`)
	ctrl := chatWithValue()
	ctrl.ValuesWithDefaults = []string{"roomId"}
	p.descriptors(ctrl)
	r := p.runner()

	if fs := p.runOne(r, "values"); len(fs) != 0 {
		t.Errorf("defaulted value reported: %+v", fs)
	}
}
