package remoteserver

import (
	"io"
	"strings"
	"testing"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func TestScanForPort_FindsAnnouncedPort(t *testing.T) {
	stdout := nopCloser{strings.NewReader("starting up\nopencode server listening on http://127.0.0.1:54321\nmore noise\n")}
	portCh := make(chan int, 1)
	scanForPort(stdout, portCh)

	port, ok := <-portCh
	if !ok {
		t.Fatal("expected a port to be delivered")
	}
	if port != 54321 {
		t.Fatalf("expected port 54321, got %d", port)
	}
}

func TestScanForPort_ChannelClosedWhenStdoutEndsWithoutMatch(t *testing.T) {
	stdout := nopCloser{strings.NewReader("booting\nstill booting\n")}
	portCh := make(chan int, 1)
	scanForPort(stdout, portCh)

	_, ok := <-portCh
	if ok {
		t.Fatal("expected channel to be closed with no delivered port")
	}
}

func TestScanForPort_OnlyDeliversFirstMatch(t *testing.T) {
	stdout := nopCloser{strings.NewReader(
		"opencode server listening on http://127.0.0.1:1111\n" +
			"opencode server listening on http://127.0.0.1:2222\n",
	)}
	portCh := make(chan int, 1)
	scanForPort(stdout, portCh)

	port, ok := <-portCh
	if !ok || port != 1111 {
		t.Fatalf("expected first port 1111, got %d (ok=%v)", port, ok)
	}
	if _, ok := <-portCh; ok {
		t.Fatal("expected only one delivered port")
	}
}
