package askpass

import (
	"context"
	"testing"
	"time"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

func TestPromptFromArgs_PlainInvocation(t *testing.T) {
	got := promptFromArgs([]string{"/usr/bin/opencode", "Password:"})
	if got != "Password:" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestPromptFromArgs_MultiWordPrompt(t *testing.T) {
	got := promptFromArgs([]string{"/usr/bin/opencode", "user@host's", "password:"})
	if got != "user@host's password:" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestPromptFromArgs_MarkerConvention(t *testing.T) {
	got := promptFromArgs([]string{"/usr/bin/opencode", "--ssh-askpass", "/usr/bin/opencode", "Password:"})
	if got != "Password:" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestPromptFromArgs_NoArgsIsEmpty(t *testing.T) {
	if got := promptFromArgs([]string{"/usr/bin/opencode"}); got != "" {
		t.Fatalf("expected empty prompt, got %q", got)
	}
}

func TestRunHelper_MissingSocketEnvReturnsOne(t *testing.T) {
	t.Setenv(socketEnvVar, "")
	if code := RunHelper([]string{"opencode", "Password:"}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunHelper_RoundTripsThroughListener(t *testing.T) {
	emitter := uievents.NewChannelEmitter(4)
	l, err := Start(context.Background(), t.TempDir(), "sess-helper", emitter, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()
	t.Setenv(socketEnvVar, l.Addr)

	done := make(chan int, 1)
	go func() {
		done <- RunHelper([]string{"opencode", "Password:"})
	}()

	var id string
	select {
	case e := <-emitter.Events():
		evt, ok := e.Payload.(model.PromptEvent)
		if !ok {
			t.Fatalf("unexpected payload type: %T", e.Payload)
		}
		id = evt.ID
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ssh_prompt event")
	}
	if !l.Table().Reply(id, "s3cret") {
		t.Fatal("expected reply to be accepted")
	}

	if code := <-done; code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}
