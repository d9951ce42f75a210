// Package model defines shared data types used across the application.
package model

import (
	"context"
	"os/exec"
	"time"
)

// Spec is a parsed, validated ssh invocation: an ordered list of passthrough
// flag tokens plus a single destination. No remote command, no -L/-R, no
// flags outside the parser's allowlist ever reach this type.
type Spec struct {
	Destination string   `json:"destination"`
	Args        []string `json:"args"`
}

// Askpass is the handle shared by every ssh child process spawned for one
// session: where the askpass helper listens, and which binary to point
// SSH_ASKPASS at.
type Askpass struct {
	Socket string // filesystem path, or "tcp:HOST:PORT"
	Exe    string // absolute path of the current program binary
}

// SshSession is the unit of lifecycle for one connected remote agent.
// The orchestrator exclusively owns every field; nothing outside
// internal/orchestrator should mutate one after it is published.
type SshSession struct {
	Key         string
	Destination string
	Password    string
	URL         string
	Dir         string
	SocketPath  string // control socket path; empty if multiplexing unsupported

	CancelAskpass context.CancelFunc
	Master        *exec.Cmd
	Forward       *exec.Cmd
	Server        *exec.Cmd

	StartedAt time.Time
}

// ConnectResult is the payload returned to the UI by a successful connect.
type ConnectResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Password    string `json:"password"`
	Destination string `json:"destination"`
}

// PromptEvent is the payload of the "ssh_prompt" UI event.
type PromptEvent struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// HostEntry is a normalized host configuration extracted from ~/.ssh/config,
// read by the doctor and security-audit checks — it does not participate in
// session bootstrap itself.
type HostEntry struct {
	Alias        string `json:"alias"`
	HostName     string `json:"host_name"`
	User         string `json:"user,omitempty"`
	Port         int    `json:"port,omitempty"`
	IdentityFile string `json:"identity_file,omitempty"`
	ProxyJump    string `json:"proxy_jump,omitempty"`
}

// DisplayTarget returns the hostname for display, falling back to alias.
func (h HostEntry) DisplayTarget() string {
	if h.HostName != "" {
		return h.HostName
	}
	return h.Alias
}
