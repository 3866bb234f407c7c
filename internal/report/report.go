// Package report assembles and prints the final accounting of a run.
// Aggregation is a pure function of the per-phase outcomes; printing is
// the only side effect and is kept separate.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"mirrorlab/internal/domain"
	"mirrorlab/internal/topology"
)

// Input collects everything the aggregator folds into the summary
type Input struct {
	Site      string
	Inventory int
	Survivors []*domain.Device
	Excluded  []domain.Exclusion
	Topology  *domain.Topology
	Stats     topology.Stats
	LabPath   string
	Elapsed   time.Duration
}

// Aggregate produces the run summary. It copies its inputs and mutates
// nothing.
func Aggregate(in Input) *domain.RunSummary {
	summary := &domain.RunSummary{
		Site:       in.Site,
		Total:      in.Inventory,
		LabPath:    in.LabPath,
		Confirmed:  in.Stats.Confirmed,
		OneSided:   in.Stats.OneSided,
		DurationMS: in.Elapsed.Milliseconds(),
	}

	summary.Reachable = make([]string, 0, len(in.Survivors))
	for _, d := range in.Survivors {
		summary.Reachable = append(summary.Reachable, d.Name)
	}
	sort.Strings(summary.Reachable)

	summary.Excluded = make([]domain.Exclusion, len(in.Excluded))
	copy(summary.Excluded, in.Excluded)

	if in.Topology != nil {
		summary.LinkCount = in.Topology.LinkCount()
	}
	return summary
}

// Print writes the operator-facing summary
func Print(w io.Writer, s *domain.RunSummary) {
	fmt.Fprintf(w, "\nRun summary for site %s\n", s.Site)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  devices in inventory:\t%d\n", s.Total)
	fmt.Fprintf(tw, "  reachable:\t%d\n", len(s.Reachable))
	fmt.Fprintf(tw, "  excluded:\t%d\n", len(s.Excluded))
	fmt.Fprintf(tw, "  links:\t%d (%d confirmed, %d one-sided)\n", s.LinkCount, s.Confirmed, s.OneSided)
	if s.LabPath != "" {
		fmt.Fprintf(tw, "  lab path:\t%s\n", s.LabPath)
	}
	fmt.Fprintf(tw, "  duration:\t%s\n", time.Duration(s.DurationMS)*time.Millisecond)
	tw.Flush()

	if len(s.Excluded) == 0 {
		return
	}
	fmt.Fprintln(w, "\nExcluded devices:")
	excluded := make([]domain.Exclusion, len(s.Excluded))
	copy(excluded, s.Excluded)
	sort.Slice(excluded, func(i, j int) bool { return excluded[i].Device < excluded[j].Device })
	for _, e := range excluded {
		fmt.Fprintf(w, "  - %s (%s): %s\n", e.Device, e.Phase, e.Reason)
	}
}
