package ui

import (
	"testing"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/orchestrator"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

func TestDrainEvents_CollectsPromptsAndIgnoresOtherEvents(t *testing.T) {
	channel := uievents.NewChannelEmitter(4)
	channel.Emit("ssh_prompt", model.PromptEvent{ID: "a", Prompt: "Password:"})
	channel.Emit("something_else", "ignored")
	channel.Emit("ssh_prompt", model.PromptEvent{ID: "b", Prompt: "Passphrase:"})

	m := initialModel(orchestrator.New(nil), channel)
	m.drainEvents()

	if len(m.prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d: %+v", len(m.prompts), m.prompts)
	}
	if m.prompts[0].id != "a" || m.prompts[1].id != "b" {
		t.Fatalf("unexpected prompt order: %+v", m.prompts)
	}
}

func TestDrainEvents_NilEmitterIsNoop(t *testing.T) {
	m := initialModel(orchestrator.New(nil), nil)
	m.drainEvents()
	if len(m.prompts) != 0 {
		t.Fatalf("expected no prompts, got %+v", m.prompts)
	}
}

func TestRemovePrompt(t *testing.T) {
	tests := []struct {
		name      string
		prompts   []promptEntry
		sel       int
		removeID  string
		wantIDs   []string
		wantSel   int
	}{
		{
			name:     "removes matching entry and clamps selection",
			prompts:  []promptEntry{{id: "a"}, {id: "b"}, {id: "c"}},
			sel:      2,
			removeID: "c",
			wantIDs:  []string{"a", "b"},
			wantSel:  1,
		},
		{
			name:     "removing an absent id is a no-op",
			prompts:  []promptEntry{{id: "a"}},
			sel:      0,
			removeID: "missing",
			wantIDs:  []string{"a"},
			wantSel:  0,
		},
		{
			name:     "removing the only entry clamps selection to zero",
			prompts:  []promptEntry{{id: "a"}},
			sel:      0,
			removeID: "a",
			wantIDs:  nil,
			wantSel:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &dashboardModel{prompts: append([]promptEntry(nil), tt.prompts...), sel: tt.sel}
			m.removePrompt(tt.removeID)

			if len(m.prompts) != len(tt.wantIDs) {
				t.Fatalf("expected %d prompts, got %d: %+v", len(tt.wantIDs), len(m.prompts), m.prompts)
			}
			for i, id := range tt.wantIDs {
				if m.prompts[i].id != id {
					t.Fatalf("expected id %q at %d, got %q", id, i, m.prompts[i].id)
				}
			}
			if m.sel != tt.wantSel {
				t.Fatalf("expected sel %d, got %d", tt.wantSel, m.sel)
			}
		})
	}
}

func TestView_DoesNotPanicWithoutSessionOrPrompts(t *testing.T) {
	m := initialModel(orchestrator.New(nil), uievents.NewChannelEmitter(1))
	_ = m.View()
}
