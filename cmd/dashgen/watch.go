package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var flags pageFlags

	cmd := &cobra.Command{
		Use:   "watch FILE_OR_DIR",
		Short: "Re-render the page whenever a descriptor changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, args[0], &flags, cmd)
		},
	}
	flags.register(cmd)
	cmd.MarkFlagRequired("output")
	return cmd
}

func runWatch(ctx context.Context, target string, flags *pageFlags, cmd *cobra.Command) error {
	log := logger.Component("cli")

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	opts := flags.options(cfg)

	rebuild := func() error {
		files, err := expandDescriptors([]string{target})
		if err != nil {
			return err
		}
		out, err := renderFiles(opts, files)
		if err != nil {
			return err
		}
		return writeOutput(flags.output, out, cmd.OutOrStdout())
	}

	if err := rebuild(); err != nil {
		return err
	}

	w, err := watch.New(target, func(paths []string) {
		log.Info("descriptors changed", logger.Fields{"paths": paths})
		if err := rebuild(); err != nil {
			log.Error("re-render failed", err)
		}
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
