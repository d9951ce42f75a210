//go:build !windows

package sshproc

import "github.com/opencode-ai/ssh-core/internal/security"

// controlArgs returns the ControlMaster/ControlPath arguments for role, or
// nil if socketPath is empty (multiplexing not yet established) or the role
// is RoleNone.
func controlArgs(role ControlRole, socketPath string) []string {
	if socketPath == "" {
		return nil
	}
	switch role {
	case RoleMaster:
		return []string{"-o", "ControlMaster=yes", "-o", "ControlPersist=no", "-o", "ControlPath=" + socketPath}
	case RoleClient:
		return []string{"-o", "ControlMaster=no", "-o", "ControlPath=" + socketPath}
	default:
		return nil
	}
}

// SupportsMultiplexing reports whether this platform can use a Unix-domain
// control socket for SSH connection multiplexing.
func SupportsMultiplexing() bool { return true }

func notInstalledError() error {
	return security.NewError(security.NotInstalled, "ssh is not installed or not on PATH", "exec.LookPath(\"ssh\") failed")
}
