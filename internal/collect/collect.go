// Package collect implements the interrogation phases that run against
// live devices: the node provisioner, which captures running configs and
// hardware identity into lab artifacts, and the neighbor poller, which
// reads LLDP tables into neighbor records. Both run bounded worker pools
// with per-device fault isolation; a failing device is demoted, never
// fatal.
package collect

import (
	"context"
	"time"

	"mirrorlab/internal/domain"
)

// Runner executes one command on a device over its management session
type Runner interface {
	Run(ctx context.Context, device *domain.Device, command string) (string, error)
}

// Config bounds the collection phases
type Config struct {
	// MaxConcurrent limits parallel device sessions
	MaxConcurrent int
	// Attempts bounds retries for transient session faults
	Attempts int
	// Backoff separates retry attempts
	Backoff time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 10,
		Attempts:      1,
		Backoff:       2 * time.Second,
	}
}

// Result partitions devices after a collection phase
type Result struct {
	Survivors []*domain.Device
	Excluded  []domain.Exclusion
}
