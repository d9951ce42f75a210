package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/creack/pty"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/ssh-core/internal/appconfig"
	"github.com/opencode-ai/ssh-core/internal/sshparse"
)

// newDebugShellCmd opens an interactive shell to the destination named by
// the given ssh invocation, reusing an existing session's control socket
// when one is live for that key (so the shell rides the already-authenticated
// connection instead of prompting again).
func newDebugShellCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "debug-shell <ssh-command>",
		Short: "Open an interactive shell, reusing a session's control socket if --key is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := sshparse.Parse(joinArgs(args))
			if err != nil {
				return err
			}
			sshArgs := append([]string(nil), spec.Args...)
			if key != "" {
				socketPath := filepath.Join(appconfig.SessionDir(key), "ssh.sock")
				if _, statErr := os.Stat(socketPath); statErr == nil {
					sshArgs = append(sshArgs, "-o", "ControlPath="+socketPath)
				}
			}
			sshArgs = append(sshArgs, spec.Destination)
			return runInteractive(context.Background(), sshArgs)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "reuse the control socket of an existing session key, if live")
	return cmd
}

// runInteractive runs ssh with the given arguments inside a PTY, bridging
// the user's terminal to the remote shell.
func runInteractive(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ssh", args...)

	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}
	defer f.Close()

	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, f)

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}
	return cmd.Wait()
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
