package probe

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"mirrorlab/internal/domain"
)

// ICMP probes reachability with echo requests. Unprivileged mode uses
// UDP datagram sockets and needs net.ipv4.ping_group_range to cover the
// process group; privileged mode needs raw socket capability.
type ICMP struct {
	timeout    time.Duration
	privileged bool
	count      int
}

// NewICMP creates an ICMP prober
func NewICMP(timeout time.Duration, privileged bool) *ICMP {
	return &ICMP{timeout: timeout, privileged: privileged, count: 3}
}

// Name returns the strategy name
func (i *ICMP) Name() string { return "icmp" }

// Probe sends echo requests and succeeds when at least one reply arrives
func (i *ICMP) Probe(ctx context.Context, device *domain.Device) error {
	pinger := probing.New(device.Addr)
	pinger.Count = i.count
	pinger.Timeout = i.timeout
	pinger.Interval = 100 * time.Millisecond
	pinger.RecordRtts = false
	pinger.SetPrivileged(i.privileged)

	if err := pinger.Resolve(); err != nil {
		return domain.NewFault(domain.FaultConnection, device.Name, "icmp probe", err)
	}
	if err := pinger.RunWithContext(ctx); err != nil {
		return classifyProbeErr(err, device, "icmp probe")
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		err := fmt.Errorf("no reply to %d echo requests", stats.PacketsSent)
		return domain.NewFault(domain.FaultTimeout, device.Name, "icmp probe", err)
	}
	return nil
}
