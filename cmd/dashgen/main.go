package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dashgen/internal/config"
	"dashgen/internal/logger"
)

func newRootCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "dashgen",
		Short: "Render dashboard descriptors into ECharts and DataTables pages",
		Long: `dashgen turns JSON or YAML dashboard descriptors into an HTML page that
draws charts with ECharts and tables with DataTables. Pages can be written
once, re-rendered on change, or served with live reload.`,
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-format") {
				logger.Configure(logLevel, logFormat)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (json, text)")

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
