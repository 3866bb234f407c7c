package cli

import (
	"github.com/spf13/cobra"

	"mirrorlab/internal/run"
)

// pipelineFlags are the per-run overrides shared by deploy and generate
type pipelineFlags struct {
	skipPrecheck   bool
	inventoryFile  string
	probeStrategy  string
	neighborSource string
	ansible        bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.skipPrecheck, "skip-precheck", false, "skip the connectivity precheck")
	fl.StringVar(&f.inventoryFile, "inventory-file", "", "static YAML inventory instead of NetBox")
	fl.StringVar(&f.probeStrategy, "probe", "", "probe strategy: tcp, icmp, nmap")
	fl.StringVar(&f.neighborSource, "neighbor-source", "", "neighbor table source: ssh, snmp")
	fl.BoolVar(&f.ansible, "ansible", false, "also write an Ansible inventory for the lab")
}

// apply folds the changed flags into the configuration
func (f *pipelineFlags) apply(cmd *cobra.Command, o *rootOptions) {
	fl := cmd.Flags()
	if fl.Changed("skip-precheck") {
		o.cfg.Probe.Skip = f.skipPrecheck
	}
	if fl.Changed("inventory-file") {
		o.cfg.Inventory.File = f.inventoryFile
	}
	if fl.Changed("probe") {
		o.cfg.Probe.Strategy = f.probeStrategy
	}
	if fl.Changed("neighbor-source") {
		o.cfg.Neighbors.Source = f.neighborSource
	}
	if fl.Changed("ansible") {
		o.cfg.Lab.Ansible = f.ansible
	}
}

// executePipeline validates configuration, resolves credentials and
// performs one run
func executePipeline(cmd *cobra.Command, o *rootOptions, f *pipelineFlags, deploy bool) error {
	f.apply(cmd, o)
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	creds, err := o.cfg.ResolveCredentials()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := run.New(ctx, o.cfg, creds, run.Options{
		Deploy: deploy,
		Output: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	_, err = p.Execute(ctx)
	return err
}
