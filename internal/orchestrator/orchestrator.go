package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/opencode-ai/ssh-core/internal/appconfig"
	"github.com/opencode-ai/ssh-core/internal/askpass"
	"github.com/opencode-ai/ssh-core/internal/bootstrap"
	"github.com/opencode-ai/ssh-core/internal/control"
	"github.com/opencode-ai/ssh-core/internal/events"
	"github.com/opencode-ai/ssh-core/internal/forward"
	"github.com/opencode-ai/ssh-core/internal/health"
	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/remoteserver"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/sshparse"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
	"github.com/opencode-ai/ssh-core/internal/uievents"
	"github.com/opencode-ai/ssh-core/internal/util"
)

// Orchestrator sequences components A through H into the connect operation,
// owns SharedState, and performs teardown on disconnect, failure, or
// application shutdown.
type Orchestrator struct {
	state    *SharedState
	emitter  uievents.Emitter
	journal  *events.Store
	checker  health.Checker
	ctx      context.Context
	shutdown context.CancelFunc
}

func New(emitter uievents.Emitter) *Orchestrator {
	if emitter == nil {
		emitter = uievents.NewLogEmitter(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		state:    NewSharedState(),
		emitter:  emitter,
		journal:  events.NewStore(),
		checker:  health.NewHTTPChecker(),
		ctx:      ctx,
		shutdown: cancel,
	}
}

// Connect implements the twelve-step sequence from the session orchestrator
// component. Any failure between session-directory creation and publish
// tears down whatever was started and deletes the session directory before
// the error is returned.
func (o *Orchestrator) Connect(command string) (model.ConnectResult, error) {
	if err := sshproc.Verify(o.ctx); err != nil {
		return model.ConnectResult{}, err
	}

	spec, err := sshparse.Parse(command)
	if err != nil {
		return model.ConnectResult{}, err
	}

	if existing := o.state.TakeCurrent(); existing != nil {
		o.teardown(existing)
	}

	key := uuid.NewString()
	password := uuid.NewString()
	localPort, err := forward.FreeLocalPort()
	if err != nil {
		return model.ConnectResult{}, security.NewError(security.SetupFailure, "could not choose a local port", err.Error())
	}
	url := "http://127.0.0.1:" + strconv.Itoa(localPort)

	o.journal.Append(events.Event{Key: key, Destination: spec.Destination, EventType: events.TypeConnectStarted})

	session, err := o.bootstrapSession(key, password, url, spec, localPort)
	if err != nil {
		o.journal.Append(events.Event{Key: key, Destination: spec.Destination, EventType: events.TypeConnectFailed, Message: err.Error()})
		return model.ConnectResult{}, err
	}

	o.state.Swap(&session.SshSession, session.table())
	o.journal.Append(events.Event{Key: key, Destination: spec.Destination, EventType: events.TypeConnectSucceeded})

	return model.ConnectResult{Key: key, URL: url, Password: password, Destination: spec.Destination}, nil
}

// sessionHandle bundles an model.SshSession with its askpass listener so the
// orchestrator can reach the prompt table without widening model.SshSession.
type sessionHandle struct {
	model.SshSession
	listener *askpass.Listener
}

func (h *sessionHandle) table() *askpass.PromptTable {
	if h.listener == nil {
		return nil
	}
	return h.listener.Table()
}

func (o *Orchestrator) bootstrapSession(key, password, url string, spec model.Spec, localPort int) (*sessionHandle, error) {
	dir := appconfig.SessionDir(key)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, security.NewError(security.SetupFailure, "could not create the session directory", err.Error())
	}

	session := &sessionHandle{SshSession: model.SshSession{
		Key:         key,
		Destination: spec.Destination,
		Password:    password,
		URL:         url,
		Dir:         dir,
		StartedAt:   time.Now(),
	}}

	failed := true
	defer func() {
		if failed {
			o.teardownPartial(session)
		}
	}()

	exe, err := os.Executable()
	if err != nil {
		return nil, security.NewError(security.SetupFailure, "could not resolve the program binary path", err.Error())
	}

	listener, err := askpass.Start(o.ctx, dir, key, o.emitter, o.journal)
	if err != nil {
		return nil, security.NewError(security.SetupFailure, "could not start the askpass listener", err.Error())
	}
	session.listener = listener
	session.CancelAskpass = listener.Stop

	// Install the prompt table the moment the listener exists, not at
	// publish: interactive password/passphrase auth happens during master,
	// bootstrap, server, and forward startup below, all before this session
	// is ever visible in SharedState.
	o.state.SetPromptTable(listener.Table())

	factory := sshproc.New(model.Askpass{Socket: listener.Addr, Exe: exe})

	if sshproc.SupportsMultiplexing() {
		session.SocketPath = filepath.Join(dir, "ssh.sock")
		master, err := control.StartMaster(o.ctx, factory, spec, session.SocketPath)
		if err != nil {
			return nil, err
		}
		session.Master = master
		if err := control.WaitReady(o.ctx, factory, spec, session.SocketPath); err != nil {
			return nil, err
		}
	}

	if err := bootstrap.Ensure(o.ctx, factory, spec, session.SocketPath); err != nil {
		return nil, err
	}

	server, remotePort, err := remoteserver.Launch(o.ctx, factory, spec, session.SocketPath, password)
	if err != nil {
		return nil, err
	}
	session.Server = server

	fwd, err := forward.Start(o.ctx, factory, spec, session.SocketPath, localPort, remotePort)
	if err != nil {
		return nil, err
	}
	session.Forward = fwd

	if !health.PollUntilHealthy(o.ctx, o.checker, url, password, util.HealthPollInterval, util.HealthTimeout) {
		return nil, security.NewError(security.HealthTimeout, "the remote agent never became healthy", "")
	}

	failed = false
	return session, nil
}

// Disconnect atomically removes the session iff its key matches, then
// schedules asynchronous teardown. No-op on an unknown key.
func (o *Orchestrator) Disconnect(key string) {
	prev := o.state.RemoveIfKey(key)
	if prev == nil {
		return
	}
	o.journal.Append(events.Event{Key: key, Destination: prev.Destination, EventType: events.TypeDisconnected})
	go o.teardown(prev)
}

// Shutdown tears down any live session synchronously, for use on
// application exit.
func (o *Orchestrator) Shutdown() {
	if prev := o.state.TakeCurrent(); prev != nil {
		o.teardown(prev)
	}
	o.shutdown()
}

// Status returns the currently connected session, or nil if none is live.
// The returned pointer is the live session itself, not a copy; callers must
// not mutate it.
func (o *Orchestrator) Status() *model.SshSession {
	return o.state.Current()
}

// PromptReply delivers a reply to an in-flight askpass prompt. Infallible:
// a reply to an unknown or already-resolved prompt id is silently dropped.
func (o *Orchestrator) PromptReply(id, value string) {
	table := o.state.PromptTable()
	if table == nil {
		return
	}
	table.Reply(id, value)
}

// teardown cancels the askpass task (unblocking in-flight prompts empty),
// kills the SSH children in forward -> server -> master order without
// waiting for exit codes, and best-effort removes the session directory.
func (o *Orchestrator) teardown(s *model.SshSession) {
	if s.CancelAskpass != nil {
		s.CancelAskpass()
	}
	killNoWait(s.Forward)
	killNoWait(s.Server)
	killNoWait(s.Master)
	if s.Dir != "" {
		if err := os.RemoveAll(s.Dir); err != nil {
			slog.Debug("orchestrator: failed to remove session dir", "dir", s.Dir, "err", err)
		}
	}
}

// teardownPartial tears down a sessionHandle constructed mid-bootstrap,
// before it has ever been published to SharedState.
func (o *Orchestrator) teardownPartial(s *sessionHandle) {
	o.teardown(&s.SshSession)
	if s.listener != nil {
		o.state.ClearPromptTableIfMatches(s.listener.Table())
	}
}

func killNoWait(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
