// Package probe implements the device probe and the connectivity
// prechecker: a bounded worker pool that partitions the inventory into
// reachable and unreachable devices before any session work starts.
package probe

import (
	"context"
	"fmt"
	"time"

	"mirrorlab/internal/domain"
)

// Prober tests basic reachability of one device within the configured
// timeout. A nil return classifies the device reachable.
type Prober interface {
	Name() string
	Probe(ctx context.Context, device *domain.Device) error
}

// Config holds precheck settings
type Config struct {
	// Strategy selects the prober: tcp, icmp, or nmap
	Strategy string
	// Port is dialed by the tcp strategy
	Port int
	// Timeout bounds one probe attempt
	Timeout time.Duration
	// Privileged switches the icmp strategy to raw sockets
	Privileged bool
	// MaxConcurrent limits parallel probes
	MaxConcurrent int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Strategy:      "tcp",
		Port:          22,
		Timeout:       10 * time.Second,
		MaxConcurrent: 10,
	}
}

// New builds the prober for the configured strategy
func New(config Config) (Prober, error) {
	switch config.Strategy {
	case "tcp":
		return NewTCP(config.Port, config.Timeout), nil
	case "icmp":
		return NewICMP(config.Timeout, config.Privileged), nil
	case "nmap":
		return NewNmap(config.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown probe strategy %q", config.Strategy)
	}
}
