package report

import (
	"strings"
	"testing"
	"time"

	"mirrorlab/internal/domain"
	"mirrorlab/internal/topology"
)

func summaryInput() Input {
	leaf := domain.NewDevice("leaf1", "10.0.0.1", "access-leaf")
	spine := domain.NewDevice("spine1", "10.0.0.2", "spine")
	leaf.Status = domain.DeviceStatusReachable
	spine.Status = domain.DeviceStatusReachable

	topo := domain.NewTopology()
	topo.AddDevice(leaf)
	topo.AddDevice(spine)
	topo.AddLink(domain.NewLink(
		domain.Endpoint{Device: "leaf1", Interface: "Ethernet1"},
		domain.Endpoint{Device: "spine1", Interface: "Ethernet3"},
	))

	return Input{
		Site:      "dc1",
		Inventory: 3,
		Survivors: []*domain.Device{spine, leaf},
		Excluded: []domain.Exclusion{
			{Device: "leaf9", Phase: domain.PhasePrecheck, Reason: "connection refused"},
		},
		Topology: topo,
		Stats:    topology.Stats{Confirmed: 1},
		LabPath:  "/labs/dc1/dc1.clab.yml",
		Elapsed:  1500 * time.Millisecond,
	}
}

func TestAggregate(t *testing.T) {
	s := Aggregate(summaryInput())

	if s.Site != "dc1" || s.Total != 3 {
		t.Errorf("site/total = %s/%d", s.Site, s.Total)
	}
	if len(s.Reachable) != 2 || s.Reachable[0] != "leaf1" || s.Reachable[1] != "spine1" {
		t.Errorf("reachable = %v, expected sorted names", s.Reachable)
	}
	if len(s.Excluded) != 1 || s.Excluded[0].Device != "leaf9" {
		t.Errorf("excluded = %v", s.Excluded)
	}
	if s.LinkCount != 1 || s.Confirmed != 1 || s.OneSided != 0 {
		t.Errorf("link counts = %d/%d/%d", s.LinkCount, s.Confirmed, s.OneSided)
	}
	if s.DurationMS != 1500 {
		t.Errorf("duration = %dms, expected 1500", s.DurationMS)
	}

	if got := s.Unreachable(); len(got) != 1 || got[0] != "leaf9" {
		t.Errorf("Unreachable() = %v", got)
	}
}

func TestAggregateDoesNotAliasInput(t *testing.T) {
	in := summaryInput()
	s := Aggregate(in)

	s.Excluded[0].Device = "mutated"
	if in.Excluded[0].Device != "leaf9" {
		t.Error("aggregate must copy the exclusion list")
	}
}

func TestAggregateWithoutTopology(t *testing.T) {
	in := summaryInput()
	in.Topology = nil
	s := Aggregate(in)
	if s.LinkCount != 0 {
		t.Errorf("link count = %d, expected 0 without a topology", s.LinkCount)
	}
}

func TestPrint(t *testing.T) {
	var buf strings.Builder
	Print(&buf, Aggregate(summaryInput()))
	out := buf.String()

	for _, want := range []string{
		"Run summary for site dc1",
		"devices in inventory:",
		"1 (1 confirmed, 0 one-sided)",
		"Excluded devices:",
		"leaf9 (precheck): connection refused",
		"/labs/dc1/dc1.clab.yml",
		"1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintWithoutExclusions(t *testing.T) {
	in := summaryInput()
	in.Excluded = nil

	var buf strings.Builder
	Print(&buf, Aggregate(in))
	if strings.Contains(buf.String(), "Excluded devices") {
		t.Error("expected no exclusion section for a clean run")
	}
}
