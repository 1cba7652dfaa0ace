package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"dashgen/internal/config"
	"dashgen/internal/logger"
	"dashgen/internal/models"
	"dashgen/internal/site"
)

// pageFlags are the page layout flags shared by render and watch
type pageFlags struct {
	output string
	host   string
	mount  string
	title  string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "Output HTML file (- for stdout)")
	cmd.Flags().StringVar(&f.host, "host", "", "Host HTML page to mount dashboards into")
	cmd.Flags().StringVar(&f.mount, "mount", "", "Mount point selector (#id, .class or tag)")
	cmd.Flags().StringVar(&f.title, "title", "", "Page title")
}

func (f *pageFlags) options(cfg *config.Config) site.Options {
	opts := site.OptionsFromConfig(cfg)
	if f.host != "" {
		opts.HostTemplate = f.host
	}
	if f.mount != "" {
		opts.MountSelector = f.mount
	}
	if f.title != "" {
		opts.Title = f.title
	}
	return opts
}

func newRenderCommand() *cobra.Command {
	var flags pageFlags

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render descriptors into one HTML page",
		Long: `Renders each dashboard descriptor, in argument order, into a single page.
Directory arguments expand to the descriptor files they contain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(withContext(cmd))
			if err != nil {
				return err
			}
			files, err := expandDescriptors(args)
			if err != nil {
				return err
			}
			out, err := renderFiles(flags.options(cfg), files)
			if err != nil {
				return err
			}
			return writeOutput(flags.output, out, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	return cmd
}

// expandDescriptors replaces directory arguments with their descriptor files
func expandDescriptors(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		var inDir []string
		for _, e := range entries {
			if !e.IsDir() && models.IsDescriptorFile(e.Name()) {
				inDir = append(inDir, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(inDir)
		files = append(files, inDir...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no descriptor files found")
	}
	return files, nil
}

// renderFiles applies every descriptor to a fresh page and returns its HTML
func renderFiles(opts site.Options, files []string) ([]byte, error) {
	p, err := site.NewPage(opts)
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		d, err := models.LoadDashboardFile(path)
		if err != nil {
			return nil, err
		}
		if err := p.Apply(d); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return p.HTML()
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Component("cli").Info("page written", logger.Fields{"path": path, "bytes": len(data)})
	return nil
}

// withContext returns the command context or a background context
func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
