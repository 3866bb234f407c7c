// Package run drives one complete interrogation run: inventory lookup,
// reachability precheck, artifact provisioning, neighbor polling,
// topology inference, lab rendering and the optional containerlab
// deployment, followed by bookkeeping. Phases execute strictly in
// order; per-device failures demote the device and the run continues.
// The only fatal errors are inventory lookup, workspace writes and a
// requested deployment failing.
package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"mirrorlab/internal/clab"
	"mirrorlab/internal/collect"
	"mirrorlab/internal/config"
	"mirrorlab/internal/domain"
	"mirrorlab/internal/graph"
	"mirrorlab/internal/inventory"
	"mirrorlab/internal/journal"
	"mirrorlab/internal/journal/sqlite"
	"mirrorlab/internal/probe"
	"mirrorlab/internal/report"
	"mirrorlab/internal/session"
	"mirrorlab/internal/topology"
)

// Options selects the per-invocation behavior on top of configuration
type Options struct {
	// Deploy runs containerlab against the rendered topology
	Deploy bool
	// Output receives the printed run summary; nil suppresses printing
	Output io.Writer
}

// Collaborator contracts, narrow so tests can substitute fakes.
type partitioner interface {
	Partition(ctx context.Context, devices []*domain.Device) *probe.Result
}

type provisioner interface {
	Provision(ctx context.Context, devices []*domain.Device) (*collect.Result, error)
}

type poller interface {
	Poll(ctx context.Context, devices []*domain.Device) *collect.PollResult
}

type labDeployer interface {
	Deploy(ctx context.Context, topologyPath string) error
}

type graphExporter interface {
	Export(ctx context.Context, site string, topo *domain.Topology) error
	Close(ctx context.Context) error
}

// Pipeline executes runs for one site with a fixed configuration
type Pipeline struct {
	config *config.Config
	opts   Options

	source      inventory.Source
	partitioner partitioner // nil when the precheck is skipped
	provisioner provisioner
	poller      poller
	builder     *topology.Builder
	renderer    *clab.Renderer
	store       *collect.Store
	deployer    labDeployer // nil unless deploying
	journal     journal.Journal
	exporter    graphExporter
}

// New wires the pipeline from configuration. The journal and the graph
// exporter are optional bookkeeping; failing to open either is logged
// and the pipeline runs without it.
func New(ctx context.Context, cfg *config.Config, creds domain.Credentials, opts Options) (*Pipeline, error) {
	p := &Pipeline{config: cfg, opts: opts}

	if cfg.Inventory.File != "" {
		p.source = inventory.NewFile(cfg.Inventory.File)
	} else {
		p.source = inventory.NewNetBox(cfg.Inventory.NetBoxURL, cfg.Inventory.NetBoxToken,
			cfg.Inventory.Roles, cfg.Inventory.HTTPTimeout)
	}

	if !cfg.Probe.Skip {
		prober, err := probe.New(probe.Config{
			Strategy:      cfg.Probe.Strategy,
			Port:          cfg.Probe.Port,
			Timeout:       cfg.Probe.Timeout,
			Privileged:    cfg.Probe.Privileged,
			MaxConcurrent: cfg.Probe.MaxConcurrent,
		})
		if err != nil {
			return nil, err
		}
		p.partitioner = probe.NewPrechecker(prober, cfg.Probe.MaxConcurrent)
	}

	worker := session.NewWorker(session.Config{
		Port:           cfg.Session.Port,
		Credentials:    creds,
		ConnectTimeout: cfg.Session.ConnectTimeout,
		CommandTimeout: cfg.Session.CommandTimeout,
		DialRate:       cfg.Session.DialRate,
		DialBurst:      cfg.Session.DialBurst,
	})
	collectCfg := collect.Config{
		MaxConcurrent: cfg.Session.MaxConcurrent,
		Attempts:      cfg.Session.Attempts,
		Backoff:       cfg.Session.RetryBackoff,
	}

	p.store = collect.NewStore(cfg.OutputDir, cfg.Site)
	p.provisioner = collect.NewProvisioner(worker, p.store, collectCfg)

	var source collect.NeighborSource
	switch cfg.Neighbors.Source {
	case "snmp":
		snmpCfg := collect.DefaultSNMPConfig()
		snmpCfg.Community = cfg.Neighbors.SNMPCommunity
		snmpCfg.Port = uint16(cfg.Neighbors.SNMPPort)
		source = collect.NewSNMPSource(snmpCfg)
	case "ssh":
		source = collect.NewSSHSource(worker, collectCfg)
	default:
		return nil, fmt.Errorf("unknown neighbor source %q", cfg.Neighbors.Source)
	}
	p.poller = collect.NewPoller(source, collectCfg)

	p.builder = topology.NewBuilder(topology.Config{
		Aliases:      cfg.Topology.Aliases,
		KeepIsolated: cfg.Topology.KeepIsolated,
	})
	p.renderer = clab.NewRenderer(clab.Config{
		Kind:       cfg.Lab.Kind,
		Image:      cfg.Lab.Image,
		MgmtSubnet: cfg.Lab.MgmtSubnet,
	})

	if opts.Deploy {
		p.deployer = clab.NewRunner(clab.RunnerConfig{
			Binary:        cfg.Lab.Binary,
			DeployTimeout: cfg.Lab.DeployTimeout,
		})
	}

	if cfg.Journal.Path != "" {
		j, err := sqlite.New(cfg.Journal.Path)
		if err != nil {
			slog.Warn("run journal unavailable", "path", cfg.Journal.Path, "error", err)
		} else {
			p.journal = j
		}
	}

	if cfg.Graph.URI != "" {
		exporter, err := graph.NewExporter(ctx, graph.Config{
			URI:      cfg.Graph.URI,
			Username: cfg.Graph.Username,
			Password: cfg.Graph.Password,
			Database: cfg.Graph.Database,
		})
		if err != nil {
			slog.Warn("graph export unavailable", "uri", cfg.Graph.URI, "error", err)
		} else {
			p.exporter = exporter
		}
	}

	return p, nil
}

// Close releases the bookkeeping backends
func (p *Pipeline) Close(ctx context.Context) {
	if p.journal != nil {
		p.journal.Close()
	}
	if p.exporter != nil {
		p.exporter.Close(ctx)
	}
}

// Execute performs one run and returns its summary
func (p *Pipeline) Execute(ctx context.Context) (*domain.RunSummary, error) {
	start := time.Now()
	site := p.config.Site
	slog.Info("starting run", "site", site)

	devices, err := p.source.Devices(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("inventory lookup for site %s failed: %w", site, err)
	}
	slog.Info("inventory loaded", "site", site, "devices", len(devices))

	var excluded []domain.Exclusion

	var reachable []*domain.Device
	if p.partitioner != nil {
		result := p.partitioner.Partition(ctx, devices)
		reachable = result.Reachable
		excluded = append(excluded, result.Excluded...)
	} else {
		slog.Info("connectivity precheck skipped")
		reachable = probe.PassAll(devices).Reachable
	}

	provisioned, err := p.provisioner.Provision(ctx, reachable)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare lab workspace: %w", err)
	}
	excluded = append(excluded, provisioned.Excluded...)

	polled := p.poller.Poll(ctx, provisioned.Survivors)
	excluded = append(excluded, polled.Excluded...)

	topo, stats := p.builder.Build(devices, polled.Records)

	var labPath string
	if len(polled.Survivors) > 0 {
		desc := p.renderer.Render(site, topo)
		labPath, err = p.renderer.Write(desc, p.store.Root())
		if err != nil {
			return nil, err
		}
		if p.config.Lab.Ansible {
			if _, err := clab.WriteAnsibleInventory(p.store.Root(), desc.Name, topo); err != nil {
				return nil, err
			}
		}
	} else {
		slog.Warn("no devices survived collection; lab not rendered", "site", site)
	}

	if p.deployer != nil {
		if labPath == "" {
			slog.Warn("skipping deployment, nothing to deploy")
		} else if err := p.deployer.Deploy(ctx, labPath); err != nil {
			return nil, fmt.Errorf("lab deployment failed: %w", err)
		}
	}

	if labPath != "" {
		if err := p.store.RelaxPermissions(); err != nil {
			slog.Warn("failed to relax workspace permissions", "error", err)
		}
	}

	summary := report.Aggregate(report.Input{
		Site:      site,
		Inventory: len(devices),
		Survivors: polled.Survivors,
		Excluded:  excluded,
		Topology:  topo,
		Stats:     stats,
		LabPath:   labPath,
		Elapsed:   time.Since(start),
	})

	p.record(ctx, start, summary, devices, excluded, topo)
	p.export(ctx, site, topo)

	if p.opts.Output != nil {
		report.Print(p.opts.Output, summary)
	}
	slog.Info("run complete",
		"site", site,
		"reachable", len(summary.Reachable),
		"excluded", len(summary.Excluded),
		"links", summary.LinkCount,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return summary, nil
}

// record writes the run into the journal; failures are logged only
func (p *Pipeline) record(ctx context.Context, start time.Time, summary *domain.RunSummary,
	devices []*domain.Device, excluded []domain.Exclusion, topo *domain.Topology) {
	if p.journal == nil {
		return
	}

	reasons := make(map[string]domain.Exclusion, len(excluded))
	for _, e := range excluded {
		reasons[e.Device] = e
	}

	rec := &journal.RunRecord{
		Site:       summary.Site,
		StartedAt:  start.UTC(),
		DurationMS: summary.DurationMS,
		Total:      summary.Total,
		Reachable:  len(summary.Reachable),
		LinkCount:  summary.LinkCount,
		Confirmed:  summary.Confirmed,
		OneSided:   summary.OneSided,
		LabPath:    summary.LabPath,
	}
	for _, d := range devices {
		dr := journal.DeviceRecord{
			Name:   d.Name,
			Addr:   d.Addr,
			Role:   d.Role,
			Status: string(d.Status),
			Serial: d.Serial,
		}
		if e, ok := reasons[d.Name]; ok {
			dr.Phase = string(e.Phase)
			dr.Reason = e.Reason
		}
		rec.Devices = append(rec.Devices, dr)
	}
	for _, l := range topo.SortedLinks() {
		rec.Links = append(rec.Links, journal.LinkRecord{
			LinkID:     l.ID,
			ADevice:    l.A.Device,
			AInterface: l.A.Interface,
			BDevice:    l.B.Device,
			BInterface: l.B.Interface,
			Confirmed:  l.Confirmed,
		})
	}

	id, err := p.journal.RecordRun(ctx, rec)
	if err != nil {
		slog.Warn("failed to journal run", "error", err)
		return
	}
	slog.Debug("run journaled", "id", id)
}

// export mirrors the topology into the graph database; failures are
// logged only
func (p *Pipeline) export(ctx context.Context, site string, topo *domain.Topology) {
	if p.exporter == nil {
		return
	}
	if err := p.exporter.Export(ctx, site, topo); err != nil {
		slog.Warn("failed to export topology graph", "error", err)
	}
}
