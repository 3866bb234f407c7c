package cli

import (
	"github.com/spf13/cobra"
)

func newDeployCmd(o *rootOptions) *cobra.Command {
	f := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Interrogate the site, write the lab and deploy it with containerlab",
		Long: `Deploy runs the full interrogation pipeline for a site and then brings
the rendered lab up with containerlab, streaming its output. The lab
mirrors what was reachable: unreachable or failing devices are excluded
and listed in the run summary.

Example:
  mirrorlab deploy --site dc1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(cmd, o, f, true)
		},
	}
	f.register(cmd)
	return cmd
}
