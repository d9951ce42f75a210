package orchestrator

import (
	"testing"

	"github.com/opencode-ai/ssh-core/internal/askpass"
	"github.com/opencode-ai/ssh-core/internal/model"
)

func TestSharedState_SwapReturnsPrevious(t *testing.T) {
	s := NewSharedState()
	if prev := s.Swap(&model.SshSession{Key: "a"}, nil); prev != nil {
		t.Fatalf("expected nil previous session, got %+v", prev)
	}
	prev := s.Swap(&model.SshSession{Key: "b"}, nil)
	if prev == nil || prev.Key != "a" {
		t.Fatalf("expected previous session a, got %+v", prev)
	}
	if s.Current().Key != "b" {
		t.Fatalf("expected current session b, got %+v", s.Current())
	}
}

func TestSharedState_RemoveIfKey(t *testing.T) {
	s := NewSharedState()
	s.Swap(&model.SshSession{Key: "a"}, nil)

	if got := s.RemoveIfKey("wrong"); got != nil {
		t.Fatalf("expected no removal for mismatched key, got %+v", got)
	}
	if s.Current() == nil {
		t.Fatal("expected session to remain after mismatched removal")
	}

	got := s.RemoveIfKey("a")
	if got == nil || got.Key != "a" {
		t.Fatalf("expected removed session a, got %+v", got)
	}
	if s.Current() != nil {
		t.Fatal("expected no current session after removal")
	}
}

func TestSharedState_TakeCurrent(t *testing.T) {
	s := NewSharedState()
	if got := s.TakeCurrent(); got != nil {
		t.Fatalf("expected nil from empty slot, got %+v", got)
	}
	s.Swap(&model.SshSession{Key: "a"}, nil)
	got := s.TakeCurrent()
	if got == nil || got.Key != "a" {
		t.Fatalf("expected session a, got %+v", got)
	}
	if s.Current() != nil {
		t.Fatal("expected slot to be empty after TakeCurrent")
	}
}

func TestSharedState_PromptTable(t *testing.T) {
	s := NewSharedState()
	if s.PromptTable() != nil {
		t.Fatal("expected nil prompt table before any session")
	}
	table := askpass.NewPromptTable()
	s.Swap(&model.SshSession{Key: "a"}, table)
	if s.PromptTable() != table {
		t.Fatal("expected the installed prompt table to be returned")
	}
}

func TestSharedState_SetPromptTable_VisibleBeforeSessionPublished(t *testing.T) {
	s := NewSharedState()
	table := askpass.NewPromptTable()
	s.SetPromptTable(table)

	if s.Current() != nil {
		t.Fatal("expected no session installed yet")
	}
	if s.PromptTable() != table {
		t.Fatal("expected the table to be reachable ahead of Swap")
	}
}

func TestSharedState_ClearPromptTableIfMatches(t *testing.T) {
	s := NewSharedState()
	table := askpass.NewPromptTable()
	s.SetPromptTable(table)

	// A newer bootstrap's table must survive a stale clear from an older,
	// since-abandoned one.
	other := askpass.NewPromptTable()
	s.SetPromptTable(other)
	s.ClearPromptTableIfMatches(table)
	if s.PromptTable() != other {
		t.Fatal("expected the newer table to survive a mismatched clear")
	}

	s.ClearPromptTableIfMatches(other)
	if s.PromptTable() != nil {
		t.Fatal("expected the matching table to be cleared")
	}

	// Clearing a nil table is always a no-op.
	s.SetPromptTable(other)
	s.ClearPromptTableIfMatches(nil)
	if s.PromptTable() != other {
		t.Fatal("expected a nil clear to be a no-op")
	}
}
