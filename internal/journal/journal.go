// Package journal defines the run journal: a persistent record of every
// interrogation run, its device outcomes, and its inferred links, so
// operators can compare runs and see when a device started failing.
package journal

import (
	"context"
	"time"
)

// RunRecord is one completed run
type RunRecord struct {
	ID         int64
	Site       string
	StartedAt  time.Time
	DurationMS int64
	Total      int
	Reachable  int
	LinkCount  int
	Confirmed  int
	OneSided   int
	LabPath    string

	Devices []DeviceRecord
	Links   []LinkRecord
}

// DeviceRecord is one device's outcome within a run. Phase and Reason
// are empty for devices that survived every phase.
type DeviceRecord struct {
	Name   string
	Addr   string
	Role   string
	Status string
	Phase  string
	Reason string
	Serial string
}

// LinkRecord is one inferred link within a run
type LinkRecord struct {
	LinkID     string
	ADevice    string
	AInterface string
	BDevice    string
	BInterface string
	Confirmed  bool
}

// Journal records run outcomes for later inspection
type Journal interface {
	// RecordRun persists a completed run and returns its assigned ID
	RecordRun(ctx context.Context, rec *RunRecord) (int64, error)

	// ListRuns returns recent runs, newest first, without their device
	// and link details. An empty site matches all sites.
	ListRuns(ctx context.Context, site string, limit int) ([]RunRecord, error)

	// GetRun loads one run with full device and link details
	GetRun(ctx context.Context, id int64) (*RunRecord, error)

	// Close releases resources
	Close() error
}
