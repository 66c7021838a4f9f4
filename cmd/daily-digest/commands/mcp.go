package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DevRickLin/daily-digest/internal/mcp"
)

func newMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve digest tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = mcp.NewServer(a.usecases.Digest, version, a.logger).Run(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
