package probe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"mirrorlab/internal/domain"
)

// Result partitions the inventory after the precheck phase
type Result struct {
	Reachable []*domain.Device
	Excluded  []domain.Exclusion
}

// outcome carries one device's probe verdict back to the collector
type outcome struct {
	device *domain.Device
	err    error
}

// Prechecker probes every inventory device ahead of session work so
// unreachable devices never consume an SSH worker slot.
type Prechecker struct {
	prober        Prober
	maxConcurrent int
}

// NewPrechecker creates a prechecker over the given prober
func NewPrechecker(prober Prober, maxConcurrent int) *Prechecker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Prechecker{prober: prober, maxConcurrent: maxConcurrent}
}

// Partition probes all devices concurrently and splits them into
// reachable and excluded sets. A failed probe demotes its device; it
// never aborts the run. Statuses are written by the collector only,
// never by the workers.
func (p *Prechecker) Partition(ctx context.Context, devices []*domain.Device) *Result {
	if len(devices) == 0 {
		return &Result{}
	}

	slog.Info("prechecking devices",
		"count", len(devices),
		"strategy", p.prober.Name(),
		"concurrency", p.maxConcurrent)

	workCh := make(chan *domain.Device, len(devices))
	resultCh := make(chan outcome, len(devices))

	var wg sync.WaitGroup
	for i := 0; i < p.maxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for device := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
					resultCh <- outcome{device: device, err: p.probeOne(ctx, device)}
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

	result := &Result{}
	for _, device := range devices {
		err, probed := verdicts[device.Name]
		if !probed {
			// worker bailed out before reaching this device
			if err = ctx.Err(); err == nil {
				err = errors.New("precheck did not complete")
			}
		}
		if err == nil {
			device.Status = domain.DeviceStatusReachable
			result.Reachable = append(result.Reachable, device)
			continue
		}
		device.Status = domain.DeviceStatusUnreachable
		slog.Warn("device failed precheck", "device", device.Name, "reason", err)
		result.Excluded = append(result.Excluded, domain.Exclusion{
			Device: device.Name,
			Phase:  domain.PhasePrecheck,
			Reason: err.Error(),
		})
	}

	slog.Info("precheck complete",
		"reachable", len(result.Reachable),
		"excluded", len(result.Excluded))
	return result
}

// probeOne demotes devices with no management address without probing
func (p *Prechecker) probeOne(ctx context.Context, device *domain.Device) error {
	if strings.TrimSpace(device.Addr) == "" {
		return domain.NewFault(domain.FaultConnection, device.Name, "precheck",
			errors.New("no management address"))
	}
	return p.prober.Probe(ctx, device)
}

// PassAll marks every device reachable without probing, for runs where
// the precheck is skipped. Devices that are in fact down surface later
// as session faults during provisioning.
func PassAll(devices []*domain.Device) *Result {
	result := &Result{Reachable: make([]*domain.Device, 0, len(devices))}
	for _, device := range devices {
		device.Status = domain.DeviceStatusReachable
		result.Reachable = append(result.Reachable, device)
	}
	return result
}
