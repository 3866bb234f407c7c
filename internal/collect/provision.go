package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"mirrorlab/internal/domain"
	"mirrorlab/internal/session"
)

// Provisioner captures each reachable device's running configuration and
// hardware identity into the artifact store. Either fetch failing
// demotes the device for the rest of the run.
type Provisioner struct {
	runner Runner
	store  *Store
	config Config
}

// NewProvisioner creates a provisioner over the given runner and store
func NewProvisioner(runner Runner, store *Store, config Config) *Provisioner {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Provisioner{runner: runner, store: store, config: config}
}

// Provision fetches artifacts for all devices concurrently and returns
// the survivors and the demotions. Statuses are written by the collector
// only, never by the workers.
func (p *Provisioner) Provision(ctx context.Context, devices []*domain.Device) (*Result, error) {
	if err := p.store.Prepare(); err != nil {
		return nil, fmt.Errorf("failed to prepare lab workspace: %w", err)
	}
	if len(devices) == 0 {
		return &Result{}, nil
	}

	slog.Info("provisioning node artifacts",
		"count", len(devices),
		"workspace", p.store.Root(),
		"concurrency", p.config.MaxConcurrent)

	workCh := make(chan *domain.Device, len(devices))
	resultCh := make(chan outcome, len(devices))

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
					resultCh <- outcome{device: device, err: p.provisionOne(ctx, device)}
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
	for out := range resultCh {
		verdicts[out.device.Name] = out.err
	}

	result := collectVerdicts(ctx, devices, verdicts, domain.PhaseProvision)
	slog.Info("provisioning complete",
		"survivors", len(result.Survivors),
		"demoted", len(result.Excluded))
	return result, nil
}

// provisionOne runs both artifact fetches for a single device
func (p *Provisioner) provisionOne(ctx context.Context, device *domain.Device) error {
	running, err := session.WithRetry(ctx, p.config.Attempts, p.config.Backoff, func() (string, error) {
		return p.runner.Run(ctx, device, cmdShowRunningConfig)
	})
	if err != nil {
		return err
	}
	if err := p.store.WriteConfig(device.SanitizedName(), running); err != nil {
		return err
	}
	slog.Debug("saved running config", "device", device.Name)

	raw, err := session.WithRetry(ctx, p.config.Attempts, p.config.Backoff, func() (string, error) {
		return p.runner.Run(ctx, device, cmdShowVersion)
	})
	if err != nil {
		return err
	}
	identity, err := ParseVersion(raw)
	if err != nil {
		return domain.NewFault(domain.FaultCommand, device.Name, "parse version", err)
	}
	device.SetIdentity(identity.Serial, identity.SystemMAC)
	if err := p.store.WriteIdentity(device.SanitizedName(), identity); err != nil {
		return err
	}
	slog.Debug("saved hardware identity", "device", device.Name, "serial", identity.Serial)
	return nil
}

// outcome carries one device's verdict back to the collector
type outcome struct {
	device *domain.Device
	err    error
}

// collectVerdicts partitions devices by verdict in inventory order.
// Devices without a verdict were skipped by a cancelled worker and are
// demoted with the context error.
func collectVerdicts(ctx context.Context, devices []*domain.Device, verdicts map[string]error, phase domain.Phase) *Result {
	result := &Result{}
	for _, device := range devices {
		err, seen := verdicts[device.Name]
		if !seen {
			if err = ctx.Err(); err == nil {
				err = fmt.Errorf("%s did not complete", phase)
			}
		}
		if err == nil {
			result.Survivors = append(result.Survivors, device)
			continue
		}
		device.Status = domain.DeviceStatusUnreachable
		slog.Warn("device demoted", "device", device.Name, "phase", phase, "reason", err)
		result.Excluded = append(result.Excluded, domain.Exclusion{
			Device: device.Name,
			Phase:  phase,
			Reason: err.Error(),
		})
	}
	return result
}
