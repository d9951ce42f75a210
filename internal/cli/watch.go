package cli

import (
	"github.com/spf13/cobra"

	"github.com/opencode-ai/ssh-core/internal/orchestrator"
	"github.com/opencode-ai/ssh-core/internal/ui"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

func newWatchCmd(orch *orchestrator.Orchestrator, channel *uievents.ChannelEmitter) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the live session dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(orch, channel)
		},
	}
}

func runWatch(orch *orchestrator.Orchestrator, channel *uievents.ChannelEmitter) error {
	return ui.Run(orch, channel)
}
