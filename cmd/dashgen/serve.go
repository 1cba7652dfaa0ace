package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dashgen/internal/config"
	"dashgen/internal/server"
)

func newServeCommand() *cobra.Command {
	var port string
	var dir string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboards over HTTP with live reload",
		Long: `Starts the HTTP service. Descriptors in the dashboards directory are
rendered at startup and re-rendered on change; more can be submitted with
POST /dashboards. Flags override the environment configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if dir != "" {
				cfg.DashboardsDir = dir
			}
			if noWatch {
				cfg.Watch = false
			}
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from PORT)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Dashboards directory (default from DASHBOARDS_DIR)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable watching the dashboards directory")

	return cmd
}
