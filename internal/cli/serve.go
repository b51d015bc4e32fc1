package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/pagemcp/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd implements 'serve', which exposes the tools over HTTP until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over HTTP",
	Long:  `Serve exposes GET /health, GET /tools, POST /tools/{tool_name} and POST /tools/batch on the configured address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(reg, httpapi.Info{Service: cfg.ServiceName(), Version: cfg.ServiceVersion()})
		return srv.Run(ctx, cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config, 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config, 5000)")
	rootCmd.AddCommand(serveCmd)
}
