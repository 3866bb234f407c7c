package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mirrorlab/internal/clab"
	"mirrorlab/internal/collect"
)

func newDestroyCmd(o *rootOptions) *cobra.Command {
	var keepFiles bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear down a deployed lab and remove its workspace",
		Long: `Destroy stops the site's containerlab environment and removes the
generated workspace directory. A missing topology file skips the
containerlab step; a failing destroy is reported but file removal still
proceeds so a half-dead lab does not wedge the workspace.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.cfg.Site == "" {
				return fmt.Errorf("site is required")
			}

			store := collect.NewStore(o.cfg.OutputDir, o.cfg.Site)
			descriptor := clab.DescriptorPath(store.Root(), o.cfg.Site)

			if _, err := os.Stat(descriptor); err != nil {
				slog.Warn("topology file not found, skipping containerlab destroy", "path", descriptor)
			} else {
				runner := clab.NewRunner(clab.RunnerConfig{Binary: o.cfg.Lab.Binary})
				if err := runner.Destroy(cmd.Context(), descriptor); err != nil {
					slog.Error("containerlab destroy failed, removing files anyway", "error", err)
				}
			}

			if keepFiles {
				return nil
			}
			if err := store.Remove(); err != nil {
				return fmt.Errorf("failed to remove lab workspace: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed lab workspace %s\n", store.Root())
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "keep the generated workspace after destroying the lab")
	return cmd
}
