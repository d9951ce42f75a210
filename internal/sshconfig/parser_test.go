// Package sshconfig tests verify the SSH config parser's ability to correctly extract
// host entries, merge wildcard blocks, handle Include directives, and gracefully
// degrade when encountering malformed input.
//
// All tests in this file use isolated temporary directories for config files,
// ensuring they never read from or write to the user's real ~/.ssh/config.
package sshconfig

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseFile_BasicAndWildcard verifies that the parser correctly handles:
//
//  1. Wildcard blocks ("Host *") that provide default values for all hosts.
//  2. Pattern blocks ("Host app-*") that match a subset of hosts with overrides.
//  3. Concrete host blocks ("Host app-1") with specific configuration.
//  4. Directive merging: when multiple blocks match a host, their directives are
//     merged. In this test, "app-1" matches three blocks: "Host *" (User=default),
//     "Host app-*" (User=wildcard), and "Host app-1" (HostName). The last matching
//     User value ("wildcard" from app-*) should win.
//  5. Wildcard-only blocks do NOT produce concrete host entries — only "app-1"
//     should appear in the results, not "*" or "app-*".
func TestParseFile_BasicAndWildcard(t *testing.T) {
	d := t.TempDir()

	cfg := `
Host *
  User default
  Port 22

Host app-*
  User wildcard

Host app-1
  HostName 10.0.0.10
  IdentityFile ~/.ssh/app1_ed25519
  ProxyJump bastion
`
	path := filepath.Join(d, "config")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Hosts) != 1 {
		t.Fatalf("expected 1 concrete host, got %d", len(res.Hosts))
	}

	h := res.Hosts[0]
	if h.Alias != "app-1" || h.User != "wildcard" || h.HostName != "10.0.0.10" {
		t.Fatalf("unexpected host parse: %+v", h)
	}
	if h.Port != 22 {
		t.Fatalf("expected inherited port 22, got %d", h.Port)
	}
	if h.ProxyJump != "bastion" {
		t.Fatalf("expected proxy jump bastion, got %q", h.ProxyJump)
	}
}

// TestParseFile_IncludeAndMalformed verifies that the parser correctly handles:
//
//  1. Include directives: an "Include inc.conf" line in the root config should
//     cause the parser to recursively parse inc.conf and merge its host entries.
//  2. Relative Include paths: "Include inc.conf" (without a leading /) is resolved
//     relative to the directory containing the root config file.
//  3. Malformed directives: a line like "BadLine" (no key-value structure) should
//     be captured as a warning rather than causing a parse failure.
//  4. Host merging across files: hosts from included files ("db") and from the
//     root file ("api") should all appear in the final result.
func TestParseFile_IncludeAndMalformed(t *testing.T) {
	d := t.TempDir()

	inc := filepath.Join(d, "inc.conf")
	if err := os.WriteFile(inc, []byte("Host db\n  HostName 10.1.1.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := filepath.Join(d, "config")
	content := "Include inc.conf\nBadLine\nHost api\n  HostName api.internal\n"
	if err := os.WriteFile(root, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ParseFile(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Hosts) != 2 {
		t.Fatalf("expected 2 hosts from include+root, got %d", len(res.Hosts))
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected warning for malformed line")
	}
}

func TestParseFile_NegatedPatternExcludesHost(t *testing.T) {
	d := t.TempDir()
	path := filepath.Join(d, "config")
	cfg := `
Host app-* !app-staging
  User shared

Host app-staging
  HostName staging.internal

Host app-prod
  HostName prod.internal
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	byAlias := map[string]string{}
	for _, h := range res.Hosts {
		byAlias[h.Alias] = h.User
	}
	if byAlias["app-prod"] != "shared" {
		t.Fatalf("expected app-prod to inherit shared user, got %q", byAlias["app-prod"])
	}
	if byAlias["app-staging"] != "" {
		t.Fatalf("expected app-staging to be excluded from the wildcard block, got user %q", byAlias["app-staging"])
	}
}

func TestParseFile_MissingFileIsWarningNotError(t *testing.T) {
	d := t.TempDir()
	res, err := ParseFile(filepath.Join(d, "does-not-exist"))
	if err != nil {
		t.Fatalf("missing config file should produce a warning, not an error: %v", err)
	}
	if len(res.Hosts) != 0 {
		t.Fatalf("expected no hosts, got %+v", res.Hosts)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for the missing file")
	}
}
