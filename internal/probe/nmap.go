package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ullaakut/nmap/v3"

	"mirrorlab/internal/domain"
)

// Nmap probes reachability with an nmap ping scan. Requires the nmap
// binary on PATH; useful on networks where ICMP is filtered but nmap's
// multi-probe discovery still gets through.
type Nmap struct {
	timeout time.Duration
}

// NewNmap creates an nmap prober
func NewNmap(timeout time.Duration) *Nmap {
	return &Nmap{timeout: timeout}
}

// Name returns the strategy name
func (n *Nmap) Name() string { return "nmap" }

// Probe runs a host discovery scan and checks the reported state
func (n *Nmap) Probe(ctx context.Context, device *domain.Device) error {
	scanCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	scanner, err := nmap.NewScanner(
		scanCtx,
		nmap.WithTargets(device.Addr),
		nmap.WithPingScan(),
	)
	if err != nil {
		return domain.NewFault(domain.FaultConnection, device.Name, "nmap probe", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return classifyProbeErr(err, device, "nmap probe")
	}
	if warnings != nil && len(*warnings) > 0 {
		slog.Debug("nmap probe finished with warnings",
			"device", device.Name, "warnings", *warnings)
	}

	for _, host := range result.Hosts {
		if host.Status.State == "up" {
			return nil
		}
	}
	return domain.NewFault(domain.FaultConnection, device.Name, "nmap probe",
		fmt.Errorf("host not reported up"))
}
