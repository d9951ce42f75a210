package askpass

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/opencode-ai/ssh-core/internal/envelope"
	"github.com/opencode-ai/ssh-core/internal/events"
	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

// Listener accepts one connection per SSH prompt: each ssh child that needs
// an interactive answer execs the program binary in helper mode, which
// dials this socket, sends one prompt envelope, and waits for one reply
// envelope before exiting.
type Listener struct {
	ln      net.Listener
	Addr    string // filesystem path, or "tcp:HOST:PORT"
	table   *PromptTable
	emitter uievents.Emitter
	journal *events.Store
	key     string // session key, attached to every emitted/journaled prompt event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start binds the listener under dir and begins accepting connections in
// the background. Stop must be called to release the socket. journal may
// be nil, in which case prompt lifecycle events are not persisted.
func Start(parent context.Context, dir, sessionKey string, emitter uievents.Emitter, journal *events.Store) (*Listener, error) {
	ln, addr, err := bind(dir)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	l := &Listener{
		ln:      ln,
		Addr:    addr,
		table:   NewPromptTable(),
		emitter: emitter,
		journal: journal,
		key:     sessionKey,
		ctx:     ctx,
		cancel:  cancel,
	}
	l.wg.Add(1)
	go l.acceptLoop()
	return l, nil
}

// Table exposes the prompt table so the orchestrator's ssh_prompt_reply
// operation can deliver replies by ID.
func (l *Listener) Table() *PromptTable { return l.table }

// Stop cancels all in-flight prompt waits, closes the socket, and blocks
// until the accept loop has exited.
func (l *Listener) Stop() {
	l.cancel()
	l.ln.Close()
	l.wg.Wait()
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.ctx.Done():
				return
			default:
				slog.Debug("askpass: accept failed", "err", err)
				return
			}
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	// Unblock the read if the listener is stopped mid-prompt.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-l.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	prompt, err := envelope.Read(conn)
	if err != nil {
		slog.Debug("askpass: malformed prompt envelope, dropping connection", "err", err)
		return
	}

	id, replies := l.table.Insert()
	l.emitter.Emit("ssh_prompt", model.PromptEvent{ID: id, Prompt: prompt})
	l.appendJournal(id, events.TypePromptEmitted)

	reply, delivered := l.table.Wait(l.ctx, id, replies)
	if delivered {
		l.appendJournal(id, events.TypePromptReplied)
	} else {
		l.appendJournal(id, events.TypePromptTimedOut)
	}

	if err := envelope.Write(conn, reply); err != nil {
		slog.Debug("askpass: failed writing reply envelope", "err", err)
	}
}

func (l *Listener) appendJournal(promptID, eventType string) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Append(events.Event{Key: l.key, PromptID: promptID, EventType: eventType}); err != nil {
		slog.Debug("askpass: failed to journal prompt event", "event_type", eventType, "err", err)
	}
}
