// Package cli wires the mirrorlab commands: deploy and generate drive
// the interrogation pipeline, destroy tears a lab down, runs browses
// the journal. Configuration is resolved once per invocation (defaults,
// config file, environment, then flags) and handed to the pipeline as
// an immutable struct.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mirrorlab/internal/config"
)

// Execute runs the root command under a signal-aware context. Interrupt
// cancels in-flight device sessions and lets the run wind down.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// rootOptions carries the persistent flag values and the configuration
// resolved from them
type rootOptions struct {
	configFile string
	site       string
	outputDir  string
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:           "mirrorlab",
		Short:         "Interrogate a live network and mirror it into a containerlab digital twin",
		Long: `mirrorlab interrogates the devices of a site over SSH, infers the
physical topology from their LLDP tables, and emits a containerlab
environment that mirrors the site: per-device startup configs, hardware
identity, and the confirmed links between them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "config file (default searches ., ~/.config/mirrorlab, /etc/mirrorlab)")
	pf.StringVarP(&o.site, "site", "s", "", "site name to operate on")
	pf.StringVarP(&o.outputDir, "output-dir", "o", "", "directory holding lab workspaces")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newDeployCmd(o))
	root.AddCommand(newGenerateCmd(o))
	root.AddCommand(newDestroyCmd(o))
	root.AddCommand(newRunsCmd(o))
	return root
}

// resolve materializes the configuration and applies flag overrides,
// then installs the logger
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("site") {
		cfg.Site = o.site
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	o.cfg = cfg
	setupLogging(cfg.LogLevel)
	return nil
}
