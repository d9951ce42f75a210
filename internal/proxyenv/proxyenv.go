// Package proxyenv keeps loopback traffic off any proxy the user's
// environment configures, so HTTP requests to the local forward
// (http://127.0.0.1:<port>) from this process and its children are never
// sent through HTTP_PROXY/HTTPS_PROXY/ALL_PROXY. The askpass socket is
// dialed directly and does not consult these variables.
package proxyenv

import (
	"os"
	"strings"
)

// loopback is the set of hosts that must always bypass a proxy.
var loopback = [...]string{"127.0.0.1", "localhost", "::1"}

// EnsureLoopbackBypass augments NO_PROXY and no_proxy with the loopback
// hosts, preserving whatever the user already set and avoiding duplicates.
// Must run synchronously before any child process or goroutine that reads
// these variables is started — os.Setenv is not safe to race with readers.
func EnsureLoopbackBypass() {
	upsert("NO_PROXY")
	upsert("no_proxy")
}

// HasLoopbackBypass reports whether every loopback host is already present
// in at least one of NO_PROXY or no_proxy, for doctor/audit checks that
// only want to observe, not mutate, the environment.
func HasLoopbackBypass() bool {
	combined := strings.ToLower(os.Getenv("NO_PROXY") + "," + os.Getenv("no_proxy"))
	items := splitNonEmpty(combined)
	for _, host := range loopback {
		found := false
		for _, v := range items {
			if v == host {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func upsert(key string) {
	items := splitNonEmpty(os.Getenv(key))
	for _, host := range loopback {
		if containsFold(items, host) {
			continue
		}
		items = append(items, host)
	}
	os.Setenv(key, strings.Join(items, ","))
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(items []string, target string) bool {
	for _, v := range items {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
