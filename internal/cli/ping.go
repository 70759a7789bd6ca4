package cli

import "github.com/spf13/cobra"

// NewPingCommand creates the health check command.
func NewPingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the sidecar runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.respond(map[string]bool{"pong": true})
		},
	}
}
