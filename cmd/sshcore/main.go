// Package main is the entry point for the ssh-core binary.
//
// ssh-core plays two roles under the same executable, distinguished by
// environment alone:
//
//   - Invoked directly, it runs the Cobra CLI built in internal/cli, which
//     defaults to the watch dashboard when given no subcommand.
//   - Invoked by ssh itself as SSH_ASKPASS (every spawned ssh child has
//     SSH_ASKPASS pointed at this same binary), it instead relays the
//     prompt to the askpass listener of whichever session spawned that ssh
//     process and prints the reply.
//
// The second role is detected via OPENCODE_SSH_ASKPASS_SOCKET, which must
// be checked before any other startup work — the CLI's own flag parsing,
// config loading, or logging init must never run for an askpass-helper
// invocation.
package main

import (
	"fmt"
	"os"

	"github.com/opencode-ai/ssh-core/internal/askpass"
	"github.com/opencode-ai/ssh-core/internal/cli"
	"github.com/opencode-ai/ssh-core/internal/proxyenv"
)

func main() {
	if askpass.IsHelperInvocation() {
		os.Exit(askpass.RunHelper(os.Args))
	}

	// Keep loopback traffic off any proxy the user's shell configures, so
	// requests to the local forward on 127.0.0.1 are never proxied.
	proxyenv.EnsureLoopbackBypass()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
