//go:build windows

package sshproc

import "github.com/opencode-ai/ssh-core/internal/security"

// controlArgs always returns nil on platforms without Unix-domain socket
// support: every ssh invocation authenticates independently.
func controlArgs(role ControlRole, socketPath string) []string { return nil }

// SupportsMultiplexing reports whether this platform can use a Unix-domain
// control socket for SSH connection multiplexing.
func SupportsMultiplexing() bool { return false }

func notInstalledError() error {
	return security.NewError(security.NotInstalled, "ssh.exe was not found on PATH", "exec.LookPath(\"ssh\") failed")
}
