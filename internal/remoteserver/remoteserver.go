// Package remoteserver launches the remote opencode agent and recovers the
// ephemeral port it chose to listen on (component G).
package remoteserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
	"github.com/opencode-ai/ssh-core/internal/util"
)

const listeningPrefix = "opencode server listening on http://"

// Launch starts the remote agent in the background and returns once its
// listening port is known (or util.RemoteLaunchTimeout has elapsed). The
// caller owns the returned *exec.Cmd for teardown; on failure the spawned
// ssh child is killed before Launch returns.
func Launch(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath, password string) (*exec.Cmd, int, error) {
	remote := fmt.Sprintf(
		"cd; env OPENCODE_SERVER_USERNAME=opencode OPENCODE_SERVER_PASSWORD=%s OPENCODE_CLIENT=desktop ~/.opencode/bin/opencode serve --hostname 127.0.0.1 --port 0",
		password,
	)

	cmd, stdout, stderr, err := factory.SpawnBackground(ctx, spec, sshproc.RoleClient, socketPath, nil, remote, true)
	if err != nil {
		return nil, 0, security.NewError(security.RemoteLaunchFailure, "could not start the remote agent", err.Error())
	}

	portCh := make(chan int, 1)
	go scanForPort(stdout, portCh)
	go logStderr(stderr)

	timeoutCtx, cancel := context.WithTimeout(ctx, util.RemoteLaunchTimeout)
	defer cancel()

	select {
	case port, ok := <-portCh:
		if !ok {
			_ = cmd.Process.Kill()
			return nil, 0, security.NewError(security.RemoteLaunchFailure,
				"the remote agent exited before announcing its listening port", "")
		}
		return cmd, port, nil
	case <-timeoutCtx.Done():
		_ = cmd.Process.Kill()
		return nil, 0, security.NewError(security.RemoteLaunchFailure,
			"timed out waiting for the remote agent to start", timeoutCtx.Err().Error())
	}
}

// scanForPort reads stdout line by line looking for listeningPrefix,
// delivers the first match on portCh, and keeps draining afterward so the
// remote process never blocks on a full pipe buffer.
func scanForPort(stdout io.ReadCloser, portCh chan<- int) {
	defer close(portCh)
	if stdout == nil {
		return
	}
	defer stdout.Close()

	sc := bufio.NewScanner(stdout)
	delivered := false
	for sc.Scan() {
		if delivered {
			continue
		}
		line := sc.Text()
		idx := strings.Index(line, listeningPrefix)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(listeningPrefix):]
		token := strings.Fields(rest)
		if len(token) == 0 {
			continue
		}
		lastColon := strings.LastIndex(token[0], ":")
		if lastColon < 0 {
			continue
		}
		port, err := strconv.Atoi(token[0][lastColon+1:])
		if err != nil {
			continue
		}
		portCh <- port
		delivered = true
	}
}

func logStderr(stderr io.ReadCloser) {
	if stderr == nil {
		return
	}
	defer stderr.Close()
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		slog.Debug("remote agent stderr", "line", sc.Text())
	}
}
