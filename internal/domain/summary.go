package domain

import "sort"

// Phase names the pipeline stage at which a device reached its outcome
type Phase string

const (
	PhasePrecheck  Phase = "precheck"
	PhaseProvision Phase = "provision"
	PhasePoll      Phase = "neighbor-poll"
	PhaseTopology  Phase = "topology"
)

// Exclusion records why a device fell out of the run: the phase it was
// demoted at and the reason, so partial success is transparent
type Exclusion struct {
	Device string `json:"device"`
	Phase  Phase  `json:"phase"`
	Reason string `json:"reason"`
}

// RunSummary is the final accounting of a run, produced once by the
// aggregator after the topology is built
type RunSummary struct {
	Site       string      `json:"site"`
	Total      int         `json:"total"`
	Reachable  []string    `json:"reachable"`
	Excluded   []Exclusion `json:"excluded"`
	LinkCount  int         `json:"link_count"`
	Confirmed  int         `json:"confirmed_links"`
	OneSided   int         `json:"one_sided_links"`
	LabPath    string      `json:"lab_path,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// Unreachable returns the excluded device names, sorted
func (s *RunSummary) Unreachable() []string {
	names := make([]string, 0, len(s.Excluded))
	for _, e := range s.Excluded {
		names = append(names, e.Device)
	}
	sort.Strings(names)
	return names
}

// ExcludedAt returns the exclusions attributed to one phase
func (s *RunSummary) ExcludedAt(phase Phase) []Exclusion {
	var out []Exclusion
	for _, e := range s.Excluded {
		if e.Phase == phase {
			out = append(out, e)
		}
	}
	return out
}
