// Package control starts and awaits readiness of the background SSH
// control master (component E) that every other child process for a
// session multiplexes over, when the platform supports it.
package control

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
	"github.com/opencode-ai/ssh-core/internal/util"
)

// StartMaster launches the background control master: "-N" (no remote
// command) plus master control args bound to socketPath. The caller owns
// the returned *exec.Cmd and must eventually Wait or kill it during
// teardown.
func StartMaster(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string) (*exec.Cmd, error) {
	cmd, _, stderr, err := factory.SpawnBackground(ctx, spec, sshproc.RoleMaster, socketPath, []string{"-N"}, "", false)
	if err != nil {
		return nil, security.NewError(security.AuthTimeout, "could not start the SSH control master", err.Error())
	}
	go drainStderr(stderr)
	return cmd, nil
}

// WaitReady polls "ssh -O check <destination>" using client control args
// every util.ControlReadyPollInterval until it exits 0 or
// util.ControlReadyTimeout elapses.
func WaitReady(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string) error {
	deadline := time.Now().Add(util.ControlReadyTimeout)
	for {
		checkCtx, cancel := context.WithTimeout(ctx, util.ControlReadyPollInterval)
		cmd, err := factory.Command(checkCtx, spec, sshproc.RoleClient, socketPath, []string{"-O", "check"}, "")
		if err == nil {
			err = cmd.Run()
		}
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return security.NewError(security.AuthTimeout,
				fmt.Sprintf("timed out waiting for the control connection to %s", spec.Destination),
				err.Error())
		}
		select {
		case <-ctx.Done():
			return security.NewError(security.AuthTimeout, "connect cancelled while waiting for the control connection", ctx.Err().Error())
		case <-time.After(util.ControlReadyPollInterval):
		}
	}
}

func drainStderr(r io.ReadCloser) {
	if r == nil {
		return
	}
	defer r.Close()
	io.Copy(io.Discard, r)
}
