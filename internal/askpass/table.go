// Package askpass implements both sides of the askpass IPC: the listener
// that every session's SSH children point SSH_ASKPASS at (component A), and
// the helper mode the program binary itself runs in when invoked as the
// askpass executable (component B).
package askpass

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencode-ai/ssh-core/internal/util"
)

// PromptTable tracks in-flight prompts for one session. A prompt is
// inserted before its "ssh_prompt" UI event is emitted and removed before
// its reply is written back to the waiting ssh child — so a reply can never
// race a lookup that hasn't happened yet.
type PromptTable struct {
	mu      sync.Mutex
	waiters map[string]chan string
}

func NewPromptTable() *PromptTable {
	return &PromptTable{waiters: make(map[string]chan string)}
}

// Insert allocates a prompt ID and a reply channel for it, returning both.
func (t *PromptTable) Insert() (id string, replies chan string) {
	id = uuid.NewString()
	replies = make(chan string, 1)
	t.mu.Lock()
	t.waiters[id] = replies
	t.mu.Unlock()
	return id, replies
}

// Remove deletes a prompt's entry. Safe to call more than once.
func (t *PromptTable) Remove(id string) {
	t.mu.Lock()
	delete(t.waiters, id)
	t.mu.Unlock()
}

// Reply delivers a reply to the prompt's waiter, if it still exists.
// Returns false if no such prompt is currently pending (already replied,
// timed out, or unknown ID).
func (t *PromptTable) Reply(id, value string) bool {
	t.mu.Lock()
	ch, ok := t.waiters[id]
	t.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// Wait blocks until a reply arrives, the prompt reply timeout elapses, or
// ctx is cancelled — whichever comes first. A timeout or cancellation
// resolves to the empty string, matching ssh's own behavior on a blank
// askpass answer; delivered distinguishes that case from an actual (if
// blank) reply, so callers can journal a timeout separately from a reply.
func (t *PromptTable) Wait(ctx context.Context, id string, replies chan string) (value string, delivered bool) {
	defer t.Remove(id)
	timer := time.NewTimer(util.PromptReplyTimeout)
	defer timer.Stop()
	select {
	case v := <-replies:
		return v, true
	case <-timer.C:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}
