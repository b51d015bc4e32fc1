package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/pagemcp/internal/mcpserver"
	"github.com/spf13/cobra"
)

// mcpCmd implements 'mcp', which speaks the Model Context Protocol on stdin/stdout.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		srv, err := mcpserver.New(reg, cfg.ServiceName(), cfg.ServiceVersion())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
