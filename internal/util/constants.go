// Package util provides common utility functions and constants used across the
// ssh-core application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "time"

const (
	// MaxIncludeDepth is the maximum nesting level for SSH config Include directives.
	// Used by: internal/sshconfig/parser.go (parseRecursive).
	MaxIncludeDepth = 16

	// ControlReadyPollInterval is how often the orchestrator polls
	// "ssh -O check" while waiting for the control master to come up.
	ControlReadyPollInterval = 100 * time.Millisecond

	// ControlReadyTimeout bounds how long the orchestrator waits for the
	// control master before failing the connect sequence with AuthTimeout.
	ControlReadyTimeout = 30 * time.Second

	// RemoteLaunchTimeout bounds how long the remote server launcher waits
	// for the agent to announce its listening port.
	RemoteLaunchTimeout = 30 * time.Second

	// HealthPollInterval is how often the orchestrator polls the forwarded
	// endpoint's health check once the forward is up.
	HealthPollInterval = 100 * time.Millisecond

	// HealthTimeout bounds how long the orchestrator waits for a passing
	// health check before failing the connect sequence with HealthTimeout.
	HealthTimeout = 30 * time.Second

	// PromptReplyTimeout bounds how long an in-flight askpass prompt waits
	// for ssh_prompt_reply before resolving to the empty string.
	PromptReplyTimeout = 120 * time.Second

	// MaxPromptEnvelope is the maximum payload size, in bytes, of a single
	// askpass wire envelope (prompt or reply).
	MaxPromptEnvelope = 65536
)
