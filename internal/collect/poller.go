package collect

import (
	"context"
	"log/slog"
	"sync"

	"mirrorlab/internal/domain"
	"mirrorlab/internal/session"
)

// NeighborSource fetches the neighbor table of one device
type NeighborSource interface {
	Name() string
	Neighbors(ctx context.Context, device *domain.Device) ([]domain.NeighborRecord, error)
}

// SSHSource reads the LLDP table over the management session
type SSHSource struct {
	runner Runner
	config Config
}

// NewSSHSource creates an SSH-backed neighbor source
func NewSSHSource(runner Runner, config Config) *SSHSource {
	return &SSHSource{runner: runner, config: config}
}

// Name returns the source name
func (s *SSHSource) Name() string { return "ssh" }

// Neighbors fetches and parses the LLDP neighbor table
func (s *SSHSource) Neighbors(ctx context.Context, device *domain.Device) ([]domain.NeighborRecord, error) {
	raw, err := session.WithRetry(ctx, s.config.Attempts, s.config.Backoff, func() (string, error) {
		return s.runner.Run(ctx, device, cmdShowLLDPNeighbors)
	})
	if err != nil {
		return nil, err
	}
	records, err := ParseLLDPNeighbors(device.Name, raw)
	if err != nil {
		return nil, domain.NewFault(domain.FaultCommand, device.Name, "parse lldp neighbors", err)
	}
	return records, nil
}

// PollResult holds the merged neighbor records plus the device partition
type PollResult struct {
	Records   []domain.NeighborRecord
	Survivors []*domain.Device
	Excluded  []domain.Exclusion
}

// Poller reads neighbor tables from all surviving devices. A device
// whose table cannot be fetched or parsed is demoted; its earlier
// artifacts are kept but it contributes no records.
type Poller struct {
	source NeighborSource
	config Config
}

// NewPoller creates a poller over the given neighbor source
func NewPoller(source NeighborSource, config Config) *Poller {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Poller{source: source, config: config}
}

// Poll fetches every device's neighbor table concurrently and merges
// the records in inventory order. An empty table is a valid result;
// only fetch or parse failures demote.
func (p *Poller) Poll(ctx context.Context, devices []*domain.Device) *PollResult {
	if len(devices) == 0 {
		return &PollResult{}
	}

	slog.Info("polling neighbor tables",
		"count", len(devices),
		"source", p.source.Name(),
		"concurrency", p.config.MaxConcurrent)

	type pollOutcome struct {
		device  *domain.Device
		records []domain.NeighborRecord
		err     error
	}

	workCh := make(chan *domain.Device, len(devices))
	resultCh := make(chan pollOutcome, len(devices))

	var wg sync.WaitGroup
	for i := 0; i < p.config.MaxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for device := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
					records, err := p.source.Neighbors(ctx, device)
					resultCh <- pollOutcome{device: device, records: records, err: err}
				}
			}
		}()
	}

	for _, device := range devices {
		workCh <- device
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	verdicts := make(map[string]error, len(devices))
	recordsByDevice := make(map[string][]domain.NeighborRecord, len(devices))
	for out := range resultCh {
		verdicts[out.device.Name] = out.err
		if out.err == nil {
			recordsByDevice[out.device.Name] = out.records
			slog.Debug("fetched neighbor table",
				"device", out.device.Name, "records", len(out.records))
		}
	}

	partition := collectVerdicts(ctx, devices, verdicts, domain.PhasePoll)

	result := &PollResult{
		Survivors: partition.Survivors,
		Excluded:  partition.Excluded,
	}
	for _, device := range partition.Survivors {
		result.Records = append(result.Records, recordsByDevice[device.Name]...)
	}

	slog.Info("neighbor poll complete",
		"survivors", len(result.Survivors),
		"demoted", len(result.Excluded),
		"records", len(result.Records))
	return result
}
