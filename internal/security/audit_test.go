package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunLocalAudit_FindsMissingLoopbackBypass(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_PROXY", "")
	t.Setenv("no_proxy", "")

	report, err := RunLocalAudit()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range report.Findings {
		if f.Target == "NO_PROXY" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a finding flagging the missing loopback proxy bypass")
	}
}

func TestRunLocalAudit_LoopbackBypassPresentProducesNoProxyFinding(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_PROXY", "127.0.0.1,localhost,::1")
	t.Setenv("no_proxy", "")

	report, err := RunLocalAudit()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.Target == "NO_PROXY" {
			t.Fatal("did not expect a loopback bypass finding once NO_PROXY covers it")
		}
	}
}

func TestRedactMessage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	msg := home + "/.ssh/id_ed25519 permission denied"
	got := RedactMessage(msg)
	if got == msg {
		t.Fatalf("expected message to be redacted")
	}
}

func TestRunLocalAudit_FindsLoosePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_PROXY", "127.0.0.1,localhost,::1")
	t.Setenv("no_proxy", "")

	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(sshDir, "config")
	if err := os.WriteFile(cfgPath, []byte("Host test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := RunLocalAudit()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) == 0 {
		t.Fatal("expected permission findings")
	}
}
