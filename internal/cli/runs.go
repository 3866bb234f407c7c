package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mirrorlab/internal/journal"
	"mirrorlab/internal/journal/sqlite"
)

func newRunsCmd(o *rootOptions) *cobra.Command {
	var limit int
	var showID int64

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the run journal",
		Long: `Runs lists recent pipeline runs from the journal, newest first. With
--site the listing is filtered to one site; with --id the full record
of a single run is shown, including per-device outcomes and links.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.cfg.Journal.Path == "" {
				return fmt.Errorf("journaling is disabled; set journal.path")
			}
			j, err := sqlite.New(o.cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			if showID > 0 {
				return printRunDetail(cmd, j, showID)
			}

			runs, err := j.ListRuns(cmd.Context(), o.cfg.Site, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSITE\tSTARTED\tDEVICES\tREACHABLE\tLINKS\tDURATION\tLAB")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
					r.ID, r.Site, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Total, r.Reachable, r.LinkCount,
					formatDuration(r.DurationMS), r.LabPath)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().Int64Var(&showID, "id", 0, "show the full record of one run")
	return cmd
}

func printRunDetail(cmd *cobra.Command, j journal.Journal, id int64) error {
	rec, err := j.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("run %d not found", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d  site=%s  started=%s  duration=%s\n",
		rec.ID, rec.Site, rec.StartedAt.Local().Format(time.RFC3339), formatDuration(rec.DurationMS))
	fmt.Fprintf(out, "Devices: %d total, %d reachable  Links: %d (%d confirmed, %d one-sided)\n",
		rec.Total, rec.Reachable, rec.LinkCount, rec.Confirmed, rec.OneSided)
	if rec.LabPath != "" {
		fmt.Fprintf(out, "Lab: %s\n", rec.LabPath)
	}

	if len(rec.Devices) > 0 {
		fmt.Fprintln(out, "\nDevices:")
		writeDeviceTable(out, rec.Devices)
	}
	if len(rec.Links) > 0 {
		fmt.Fprintln(out, "\nLinks:")
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, l := range rec.Links {
			state := "one-sided"
			if l.Confirmed {
				state = "confirmed"
			}
			fmt.Fprintf(tw, "  %s:%s\t<->\t%s:%s\t%s\n",
				l.ADevice, l.AInterface, l.BDevice, l.BInterface, state)
		}
		tw.Flush()
	}
	return nil
}

func writeDeviceTable(out io.Writer, devices []journal.DeviceRecord) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tADDR\tROLE\tSTATUS\tDETAIL")
	for _, d := range devices {
		detail := ""
		if d.Reason != "" {
			detail = fmt.Sprintf("%s: %s", d.Phase, d.Reason)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", d.Name, d.Addr, d.Role, d.Status, detail)
	}
	tw.Flush()
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}
