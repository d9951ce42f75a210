package sshproc

import (
	"reflect"
	"testing"

	"github.com/opencode-ai/ssh-core/internal/model"
)

func TestArgs_ClientRoleWithSocket(t *testing.T) {
	f := New(model.Askpass{Socket: "/tmp/s/askpass.sock", Exe: "/usr/bin/ssh-core"})
	spec := model.Spec{Destination: "user@host", Args: []string{"-p", "2222"}}

	got := f.args(spec, RoleClient, "/tmp/s/ssh.sock", []string{"-N"}, "")

	if !SupportsMultiplexing() {
		want := []string{"-p", "2222", "-N", "user@host"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		return
	}
	want := []string{
		"-o", "ControlMaster=no", "-o", "ControlPath=/tmp/s/ssh.sock",
		"-p", "2222", "-N", "user@host",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestArgs_NoSocketOmitsControlArgsRegardlessOfRole(t *testing.T) {
	f := New(model.Askpass{})
	spec := model.Spec{Destination: "user@host"}
	got := f.args(spec, RoleMaster, "", nil, "")
	want := []string{"user@host"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestArgs_CommandAppendsAfterDestination(t *testing.T) {
	f := New(model.Askpass{})
	spec := model.Spec{Destination: "user@host"}
	got := f.args(spec, RoleNone, "", nil, "echo hi")
	want := []string{"user@host", "echo hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBaseEnv_SetsAskpassAndDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	f := New(model.Askpass{Socket: "/tmp/s/askpass.sock", Exe: "/usr/bin/ssh-core"})
	env := f.baseEnv()

	assertHas := func(kv string) {
		for _, e := range env {
			if e == kv {
				return
			}
		}
		t.Fatalf("expected env to contain %q, got %v", kv, env)
	}
	assertHas("SSH_ASKPASS_REQUIRE=force")
	assertHas("SSH_ASKPASS=/usr/bin/ssh-core")
	assertHas("OPENCODE_SSH_ASKPASS_SOCKET=/tmp/s/askpass.sock")
	assertHas("TERM=dumb")
	assertHas("DISPLAY=1")
}

func TestBaseEnv_PreservesExistingDisplay(t *testing.T) {
	t.Setenv("DISPLAY", ":1")
	f := New(model.Askpass{})
	env := f.baseEnv()
	for _, e := range env {
		if e == "DISPLAY=1" {
			t.Fatal("should not override an existing DISPLAY value")
		}
	}
}
