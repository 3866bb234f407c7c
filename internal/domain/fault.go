package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies a per-device failure
type FaultKind string

const (
	FaultConnection FaultKind = "connection_failure"     // Transport could not be established
	FaultAuth       FaultKind = "authentication_failure" // Session refused the credentials
	FaultTimeout    FaultKind = "timeout"                // Operation exceeded its deadline
	FaultCommand    FaultKind = "command_error"          // Device responded but output failed or was unparseable
)

// Fault is the uniform failure returned by per-device operations. Every
// fault demotes exactly one device; faults never abort the run. The only
// fatal condition in the system is an empty or failed inventory fetch,
// which is reported as a plain error before any phase starts.
type Fault struct {
	Kind   FaultKind
	Device string
	Op     string
	Err    error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s on %s during %s", f.Kind, f.Device, f.Op)
	}
	return fmt.Sprintf("%s on %s during %s: %v", f.Kind, f.Device, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault creates a classified fault for one device operation
func NewFault(kind FaultKind, device, op string, err error) *Fault {
	return &Fault{Kind: kind, Device: device, Op: op, Err: err}
}

// KindOf extracts the fault kind from an error chain, or "" if the
// chain contains no Fault
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsFault reports whether the error chain contains a Fault of the given kind
func IsFault(err error, kind FaultKind) bool {
	return KindOf(err) == kind
}
