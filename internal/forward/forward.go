// Package forward spawns the local-to-remote TCP port forward that carries
// the desktop app's HTTP traffic to the remote agent (component H).
package forward

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os/exec"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
)

// FreeLocalPort binds 127.0.0.1:0, reads the port the OS assigned, and
// closes the listener immediately. A brief TOCTOU window exists between the
// close and the forward's own bind; this is acceptable since only other
// loopback binds compete and the forward fails loudly via
// ExitOnForwardFailure=yes if the race is lost.
func FreeLocalPort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// Start launches the background forward from localPort to remotePort over
// the session's control connection. The caller owns the returned *exec.Cmd
// for teardown.
func Start(ctx context.Context, factory *sshproc.Factory, spec model.Spec, socketPath string, localPort, remotePort int) (*exec.Cmd, error) {
	spec.Args = append(append([]string(nil), spec.Args...), "-o", "ExitOnForwardFailure=yes")
	extra := []string{"-N", "-L", fmt.Sprintf("127.0.0.1:%d:127.0.0.1:%d", localPort, remotePort)}

	cmd, _, stderr, err := factory.SpawnBackground(ctx, spec, sshproc.RoleClient, socketPath, extra, "", false)
	if err != nil {
		return nil, security.NewError(security.ForwardFailure, "could not start the port forward", err.Error())
	}
	go logStderr(stderr)
	return cmd, nil
}

func logStderr(stderr io.ReadCloser) {
	if stderr == nil {
		return
	}
	defer stderr.Close()
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		slog.Debug("forward stderr", "line", sc.Text())
	}
}
