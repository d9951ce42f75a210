// Package cli provides the command-line interface for ssh-core, built with
// Cobra.
//
// Command tree:
//
//	ssh-core connect <command>        → bootstraps a remote agent session
//	ssh-core disconnect <key>         → tears down a session
//	ssh-core prompt-reply <id> <val>  → answers an in-flight SSH prompt
//	ssh-core doctor                   → operational diagnostics
//	ssh-core security audit           → local security posture checks
//	ssh-core events                   → session lifecycle event log
//	ssh-core watch                    → live TUI dashboard
//	ssh-core debug-shell <command>    → interactive shell reusing the control socket
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/ssh-core/internal/doctor"
	"github.com/opencode-ai/ssh-core/internal/events"
	"github.com/opencode-ai/ssh-core/internal/history"
	"github.com/opencode-ai/ssh-core/internal/orchestrator"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

// NewRootCommand creates and returns the top-level Cobra command for
// ssh-core. Invoked without a subcommand, it launches the watch TUI
// dashboard.
func NewRootCommand() *cobra.Command {
	channel := uievents.NewChannelEmitter(32)
	emitter := uievents.NewMultiEmitter(uievents.NewLogEmitter(nil), channel)
	orch := orchestrator.New(emitter)

	root := &cobra.Command{
		Use:   "ssh-core",
		Short: "Remote SSH session bootstrap for the opencode desktop agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(orch, channel)
		},
	}

	root.AddCommand(newConnectCmd(orch))
	root.AddCommand(newDisconnectCmd(orch))
	root.AddCommand(newPromptReplyCmd(orch))
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newSecurityCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newWatchCmd(orch, channel))
	root.AddCommand(newDebugShellCmd())
	return root
}

func newConnectCmd(orch *orchestrator.Orchestrator) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "connect <ssh-command>",
		Short: "Bootstrap a remote agent session over the given ssh invocation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := orch.Connect(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("%s", security.UserMessage(err, true))
			}
			_ = history.Touch(result.Destination)
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Printf("connected key=%s url=%s destination=%s\n", result.Key, result.URL, result.Destination)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	// Everything from the first positional argument on is the ssh invocation,
	// so its own flags (-p, -i, -L, ...) reach the ssh command parser.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newDisconnectCmd(orch *orchestrator.Orchestrator) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <key>",
		Short: "Tear down a session by key (no-op on an unknown key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch.Disconnect(args[0])
			fmt.Printf("disconnect requested for %s\n", args[0])
			return nil
		},
	}
}

func newPromptReplyCmd(orch *orchestrator.Orchestrator) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt-reply <id> <value>",
		Short: "Answer an in-flight SSH askpass prompt (no-op on an unknown id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch.PromptReply(args[0], args[1])
			return nil
		},
	}
}

func newDoctorCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run operational diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := doctor.Run()
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if len(report.Issues) == 0 {
				fmt.Println("No doctor findings.")
				return nil
			}
			fmt.Printf("%-8s %-24s %-26s %s\n", "SEV", "CHECK", "TARGET", "MESSAGE")
			for _, issue := range report.Issues {
				fmt.Printf("%-8s %-24s %-26s %s\n",
					strings.ToUpper(string(issue.Severity)), issue.Check, issue.Target, issue.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newSecurityCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{Use: "security", Short: "Security checks and local posture tools"}
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Run a local security audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := security.RunLocalAudit()
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if len(report.Findings) == 0 {
				fmt.Println("No security findings.")
				return nil
			}
			fmt.Printf("%-8s %-34s %-36s %s\n", "SEV", "TARGET", "MESSAGE", "RECOMMENDATION")
			for _, f := range report.Findings {
				fmt.Printf("%-8s %-34s %-36s %s\n", strings.ToUpper(string(f.Severity)), f.Target, f.Message, f.Recommendation)
			}
			return nil
		},
	}
	audit.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.AddCommand(audit)
	return cmd
}

func newEventsCmd() *cobra.Command {
	var key, eventType, since string
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show session lifecycle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceTime, err := parseSince(since)
			if err != nil {
				return err
			}
			store := events.NewStore()
			recs, err := store.Read(events.Query{Key: key, EventType: eventType, Since: sinceTime, Limit: limit})
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			if len(recs) == 0 {
				fmt.Println("(no events)")
				return nil
			}
			fmt.Printf("%-25s %-20s %-12s %-24s %s\n", "TIMESTAMP", "EVENT", "KEY", "DESTINATION", "MESSAGE")
			for _, evt := range recs {
				fmt.Printf("%-25s %-20s %-12s %-24s %s\n",
					evt.Timestamp.Format(time.RFC3339), evt.EventType, evt.Key, evt.Destination, evt.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "filter by session key")
	cmd.Flags().StringVar(&eventType, "event", "", "filter by event type")
	cmd.Flags().StringVar(&since, "since", "", "filter by age duration (e.g. 1h) or RFC3339 timestamp")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of events to return")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value %q: use duration (e.g. 1h) or RFC3339", s)
	}
	return t, nil
}
