// Package orchestrator sequences every component of a session's bootstrap
// (A through H), owns the at-most-one-session slot, and correlates askpass
// prompts with their replies (components I and J).
package orchestrator

import (
	"sync"

	"github.com/opencode-ai/ssh-core/internal/askpass"
	"github.com/opencode-ai/ssh-core/internal/model"
)

// SharedState holds the single live session slot and a reference to the
// current askpass prompt table. Lock discipline: the session mutex and any
// prompt-table lock are never held at once; each is acquired only for the
// duration of its own slot swap or insert/remove.
type SharedState struct {
	mu      sync.Mutex
	session *model.SshSession
	table   *askpass.PromptTable
}

func NewSharedState() *SharedState {
	return &SharedState{}
}

// Current returns the active session, or nil if none.
func (s *SharedState) Current() *model.SshSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Swap atomically replaces the session slot, returning whatever was
// previously installed (nil if the slot was empty).
func (s *SharedState) Swap(next *model.SshSession, table *askpass.PromptTable) *model.SshSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.session
	s.session = next
	s.table = table
	return prev
}

// SetPromptTable installs a listener's prompt table ahead of publish, so a
// prompt raised while the master/bootstrap/server/forward children are
// still authenticating can be answered. Bootstrap calls this the moment its
// askpass listener starts, long before Swap makes the session itself
// visible.
func (s *SharedState) SetPromptTable(table *askpass.PromptTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// ClearPromptTableIfMatches removes table from the slot iff it is still the
// one installed, leaving a newer session's table (installed by a
// since-started Connect) untouched. Used to clean up after a bootstrap that
// failed before ever reaching Swap.
func (s *SharedState) ClearPromptTableIfMatches(table *askpass.PromptTable) {
	if table == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == table {
		s.table = nil
	}
}

// RemoveIfKey removes the current session iff its key matches, returning it
// (nil if no match). Used by disconnect, which is otherwise a no-op on an
// unknown key.
func (s *SharedState) RemoveIfKey(key string) *model.SshSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.Key != key {
		return nil
	}
	prev := s.session
	s.session = nil
	s.table = nil
	return prev
}

// TakeCurrent unconditionally removes and returns whatever session is
// installed, or nil if the slot is empty. Used by Shutdown, which tears
// down the live session regardless of its key.
func (s *SharedState) TakeCurrent() *model.SshSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.session
	s.session = nil
	s.table = nil
	return prev
}

// PromptTable returns the current session's prompt table, or nil if no
// session is active.
func (s *SharedState) PromptTable() *askpass.PromptTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}
