package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"mirrorlab/internal/domain"
)

// TCP probes reachability by completing a TCP handshake against the
// device's management port
type TCP struct {
	port    int
	timeout time.Duration
}

// NewTCP creates a TCP prober for the given port
func NewTCP(port int, timeout time.Duration) *TCP {
	return &TCP{port: port, timeout: timeout}
}

// Name returns the strategy name
func (t *TCP) Name() string { return "tcp" }

// Probe dials the management port and closes the connection on success
func (t *TCP) Probe(ctx context.Context, device *domain.Device) error {
	addr := net.JoinHostPort(device.Addr, fmt.Sprintf("%d", t.port))
	dialer := net.Dialer{Timeout: t.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return classifyProbeErr(err, device, "tcp probe")
	}
	conn.Close()
	return nil
}

// classifyProbeErr wraps a probe error in the matching fault kind
func classifyProbeErr(err error, device *domain.Device, op string) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return domain.NewFault(domain.FaultTimeout, device.Name, op, err)
	}
	return domain.NewFault(domain.FaultConnection, device.Name, op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
