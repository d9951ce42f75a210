package security

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencode-ai/ssh-core/internal/appconfig"
	"github.com/opencode-ai/ssh-core/internal/proxyenv"
	"github.com/opencode-ai/ssh-core/internal/sshconfig"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RunLocalAudit inspects local file posture around the bootstrap subsystem:
// SSH key material permissions, config artifact permissions, and the
// loopback proxy bypass that keeps traffic to the local forward off any
// configured proxy.
func RunLocalAudit() (AuditReport, error) {
	var findings []Finding

	if !proxyenv.HasLoopbackBypass() {
		findings = append(findings, Finding{
			Severity:       SeverityMedium,
			Target:         "NO_PROXY",
			Message:        "loopback addresses are not exempted from the configured proxy",
			Recommendation: "call proxyenv.EnsureLoopbackBypass before starting any session, or unset HTTP_PROXY/HTTPS_PROXY",
		})
	}

	home, err := os.UserHomeDir()
	if err == nil {
		checkPathPerm(&findings, filepath.Join(home, ".ssh"), 0o700, false)
		checkPathPerm(&findings, filepath.Join(home, ".ssh", "config"), 0o600, true)
	}

	cfgDir, err := appconfig.ConfigDir()
	if err == nil {
		checkPathPerm(&findings, cfgDir, 0o700, false)
		checkPathPerm(&findings, filepath.Join(cfgDir, "config.yaml"), 0o600, true)
	}

	res, err := sshconfig.ParseDefault()
	if err == nil {
		seen := map[string]struct{}{}
		for _, h := range res.Hosts {
			if strings.TrimSpace(h.IdentityFile) == "" {
				continue
			}
			identity := h.IdentityFile
			if strings.HasPrefix(identity, "~/") && home != "" {
				identity = filepath.Join(home, identity[2:])
			}
			if _, ok := seen[identity]; ok {
				continue
			}
			seen[identity] = struct{}{}
			checkPathPerm(&findings, identity, 0o600, true)
		}
	}

	exe, err := os.Executable()
	if err == nil {
		if st, statErr := os.Stat(exe); statErr == nil && st.Mode().Perm()&0o111 == 0 {
			findings = append(findings, Finding{
				Severity:       SeverityHigh,
				Target:         exe,
				Message:        "program binary is not executable, askpass helper mode will fail",
				Recommendation: "restore the execute bit on the installed binary",
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}, nil
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode > max {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityMedium,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}
