package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChecker_SucceedsOnCorrectBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "opencode" || pass != "s3cret" || r.URL.Path != "/health" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewHTTPChecker()
	if !checker.Check(context.Background(), srv.URL, "s3cret") {
		t.Fatal("expected healthy check to succeed")
	}
}

func TestHTTPChecker_FailsOnWrongPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	checker := NewHTTPChecker()
	if checker.Check(context.Background(), srv.URL, "wrong") {
		t.Fatal("expected unhealthy check to fail")
	}
}

type fakeChecker struct {
	healthyAfter int
	calls        int
}

func (f *fakeChecker) Check(ctx context.Context, url, password string) bool {
	f.calls++
	return f.calls >= f.healthyAfter
}

func TestPollUntilHealthy_SucceedsAfterRetries(t *testing.T) {
	checker := &fakeChecker{healthyAfter: 3}
	ok := PollUntilHealthy(context.Background(), checker, "http://x", "p", 5*time.Millisecond, time.Second)
	if !ok {
		t.Fatal("expected poll to eventually succeed")
	}
	if checker.calls < 3 {
		t.Fatalf("expected at least 3 calls, got %d", checker.calls)
	}
}

func TestPollUntilHealthy_TimesOut(t *testing.T) {
	checker := &fakeChecker{healthyAfter: 1000}
	ok := PollUntilHealthy(context.Background(), checker, "http://x", "p", 5*time.Millisecond, 50*time.Millisecond)
	if ok {
		t.Fatal("expected poll to time out")
	}
}
