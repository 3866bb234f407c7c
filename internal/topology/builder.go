// Package topology infers the link-level graph from the neighbor
// records collected across all surviving devices. Inference is a pure
// function of the complete record set: no ordering between devices or
// records changes the result.
package topology

import (
	"log/slog"
	"strings"

	"mirrorlab/internal/domain"
)

// Config controls link inference
type Config struct {
	// Aliases maps reported neighbor names to inventory hostnames
	Aliases map[string]string
	// KeepIsolated retains survivors with no resolved links as
	// isolated nodes
	KeepIsolated bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{KeepIsolated: true}
}

// Stats counts what the builder kept and dropped
type Stats struct {
	Records       int
	Unresolved    int
	SelfAdjacency int
	Demoted       int
	Confirmed     int
	OneSided      int
}

// Builder resolves neighbor records against the inventory and assembles
// the deduplicated link graph
type Builder struct {
	config Config
}

// NewBuilder creates a builder
func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// edge is one resolved, normalized, directed observation
type edge struct {
	local    string
	localIf  string
	remote   string
	remoteIf string
}

func (e edge) forwardKey() [4]string {
	return [4]string{
		strings.ToLower(e.local), strings.ToLower(e.localIf),
		strings.ToLower(e.remote), strings.ToLower(e.remoteIf),
	}
}

func (e edge) reverseKey() [4]string {
	return [4]string{
		strings.ToLower(e.remote), strings.ToLower(e.remoteIf),
		strings.ToLower(e.local), strings.ToLower(e.localIf),
	}
}

// Build assembles the topology from the complete record set. Devices
// carry their final status: only reachable ones may appear in the graph,
// and records touching a demoted device on either side are dropped.
// Both endpoints reporting the adjacency yields one confirmed link; a
// one-sided report yields one unconfirmed link.
func (b *Builder) Build(devices []*domain.Device, records []domain.NeighborRecord) (*domain.Topology, Stats) {
	stats := Stats{Records: len(records)}

	var survivors []*domain.Device
	names := make([]string, 0, len(devices))
	alive := make(map[string]bool, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
		if d.Reachable() {
			survivors = append(survivors, d)
			alive[strings.ToLower(d.Name)] = true
		}
	}

	resolver := newResolver(names, b.config.Aliases)

	var resolved []edge
	seen := make(map[[4]string]bool, len(records))
	for _, r := range records {
		local, ok := resolver.resolve(r.LocalDevice)
		if !ok {
			stats.Unresolved++
			continue
		}
		remote, ok := resolver.resolve(r.RemoteName)
		if !ok {
			stats.Unresolved++
			slog.Debug("dropping record with unresolved remote",
				"device", r.LocalDevice, "interface", r.LocalInterface, "remote", r.RemoteName)
			continue
		}
		if strings.EqualFold(local, remote) {
			stats.SelfAdjacency++
			continue
		}
		if !alive[strings.ToLower(local)] || !alive[strings.ToLower(remote)] {
			stats.Demoted++
			slog.Debug("dropping record touching a demoted device",
				"device", local, "remote", remote)
			continue
		}

		e := edge{
			local:    local,
			localIf:  NormalizeInterface(r.LocalInterface),
			remote:   remote,
			remoteIf: NormalizeInterface(r.RemoteInterface),
		}
		resolved = append(resolved, e)
		seen[e.forwardKey()] = true
	}

	topo := domain.NewTopology()
	for _, e := range resolved {
		link := domain.NewLink(
			domain.Endpoint{Device: e.local, Interface: e.localIf},
			domain.Endpoint{Device: e.remote, Interface: e.remoteIf},
		)
		link.Confirmed = seen[e.reverseKey()]
		topo.AddLink(link)
	}

	for _, l := range topo.Links {
		if l.Confirmed {
			stats.Confirmed++
		} else {
			stats.OneSided++
		}
	}

	linked := make(map[string]bool, len(topo.Links)*2)
	for _, l := range topo.Links {
		linked[strings.ToLower(l.A.Device)] = true
		linked[strings.ToLower(l.B.Device)] = true
	}
	for _, d := range survivors {
		if b.config.KeepIsolated || linked[strings.ToLower(d.Name)] {
			topo.AddDevice(d)
		}
	}

	slog.Info("topology built",
		"devices", len(topo.Devices),
		"links", topo.LinkCount(),
		"confirmed", stats.Confirmed,
		"one_sided", stats.OneSided,
		"unresolved", stats.Unresolved,
		"self_adjacency", stats.SelfAdjacency,
		"demoted", stats.Demoted)
	return topo, stats
}
