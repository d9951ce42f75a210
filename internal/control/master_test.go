package control

import (
	"context"
	"testing"
	"time"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/sshproc"
)

func TestWaitReady_TimesOutWhenSshMissingFromPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	factory := sshproc.New(model.Askpass{})
	spec := model.Spec{Destination: "example.internal"}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := WaitReady(ctx, factory, spec, "/tmp/nonexistent.sock")
	if err == nil {
		t.Fatal("expected error when ssh is unavailable")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("WaitReady did not respect context deadline")
	}
}

func TestWaitReady_RespectsContextCancellation(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	factory := sshproc.New(model.Askpass{})
	spec := model.Spec{Destination: "example.internal"}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := WaitReady(ctx, factory, spec, "")
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
}
