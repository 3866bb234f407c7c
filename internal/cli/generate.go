package cli

import (
	"github.com/spf13/cobra"
)

func newGenerateCmd(o *rootOptions) *cobra.Command {
	f := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Interrogate the site and write the lab without deploying it",
		Long: `Generate runs the full interrogation pipeline for a site: precheck,
config and identity collection, LLDP polling and topology inference.
The containerlab topology and per-device artifacts are written to the
lab workspace; nothing is deployed. Inspect the result, then bring it
up with "mirrorlab deploy" or containerlab directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(cmd, o, f, false)
		},
	}
	f.register(cmd)
	return cmd
}
