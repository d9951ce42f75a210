// Package sshproc builds ssh(1) invocations for every child process the
// bootstrap subsystem spawns: the control master, the remote bootstrap and
// server commands, and the local port forward. It is responsible only for
// constructing and starting exec.Cmd values — it never implements any part
// of the SSH protocol itself, so every invocation inherits the user's full
// ~/.ssh/config (keys, agent, ProxyJump chains) the same way a manually
// typed ssh command would.
package sshproc

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/opencode-ai/ssh-core/internal/model"
)

// ControlRole selects which ControlMaster arguments (if any) a command
// should carry. On non-Unix platforms every role behaves as RoleNone.
type ControlRole int

const (
	RoleNone ControlRole = iota
	RoleMaster
	RoleClient
)

// EnsureBinary checks that the "ssh" binary is reachable on PATH, returning
// a platform-specific NotInstalled error if not.
func EnsureBinary() error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return notInstalledError()
	}
	return nil
}

// Verify runs "ssh -V" and returns a platform-specific NotInstalled error if
// it fails to execute. ssh writes its version banner to stderr and exits 0.
func Verify(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "ssh", "-V")
	if err := cmd.Run(); err != nil {
		return notInstalledError()
	}
	return nil
}

// Factory builds ssh invocations sharing one askpass handle.
type Factory struct {
	Askpass model.Askpass
}

// New creates a Factory bound to the given askpass handle.
func New(askpass model.Askpass) *Factory {
	return &Factory{Askpass: askpass}
}

// baseEnv returns the environment every spawned ssh child carries: askpass
// wiring plus the display/terminal values that make SSH_ASKPASS reliably
// consulted across platforms.
func (f *Factory) baseEnv() []string {
	env := os.Environ()
	env = append(env,
		"SSH_ASKPASS_REQUIRE=force",
		"SSH_ASKPASS="+f.Askpass.Exe,
		"OPENCODE_SSH_ASKPASS_SOCKET="+f.Askpass.Socket,
		"TERM=dumb",
	)
	if os.Getenv("DISPLAY") == "" {
		env = append(env, "DISPLAY=1")
	}
	return env
}

// args assembles control-path arguments (Unix only, when socketPath is
// non-empty), the passthrough args, extra flags, and the destination, in
// that order — extra is for ssh options that must precede the destination
// (e.g. -N, -O check). A non-empty command is appended last, after the
// destination, as the remote command ssh runs over the connection.
func (f *Factory) args(spec model.Spec, role ControlRole, socketPath string, extra []string, command string) []string {
	var out []string
	out = append(out, controlArgs(role, socketPath)...)
	out = append(out, spec.Args...)
	out = append(out, extra...)
	out = append(out, spec.Destination)
	if command != "" {
		out = append(out, command)
	}
	return out
}

// Command builds a foreground ssh invocation without starting it: stdin is
// always null, and stdout and stderr are left unset so the caller attaches
// its own writers before Run (unset streams go to the null device). Used for
// one-shot remote commands (bootstrap version probe and installer,
// control-master readiness checks).
func (f *Factory) Command(ctx context.Context, spec model.Spec, role ControlRole, socketPath string, extra []string, command string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, "ssh", f.args(spec, role, socketPath, extra, command)...)
	cmd.Env = f.baseEnv()
	cmd.Stdin = nil
	return cmd, nil
}

// SpawnBackground builds and starts a background, long-running ssh
// invocation: stdout is discarded unless captureStdout is set (the remote
// server launcher needs to scan it for the listening-port announcement),
// stderr is piped for logging, stdin is always null.
func (f *Factory) SpawnBackground(ctx context.Context, spec model.Spec, role ControlRole, socketPath string, extra []string, command string, captureStdout bool) (cmd *exec.Cmd, stdout io.ReadCloser, stderr io.ReadCloser, err error) {
	cmd = exec.CommandContext(ctx, "ssh", f.args(spec, role, socketPath, extra, command)...)
	cmd.Env = f.baseEnv()
	cmd.Stdin = nil

	stderr, err = cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	if captureStdout {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		cmd.Stdout = io.Discard
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, err
	}
	return cmd, stdout, stderr, nil
}
