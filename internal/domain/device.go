package domain

import "strings"

// DeviceStatus represents the reachability classification of a device
type DeviceStatus string

const (
	DeviceStatusUnknown     DeviceStatus = "unknown"     // Not yet probed
	DeviceStatusReachable   DeviceStatus = "reachable"   // Management session possible
	DeviceStatusUnreachable DeviceStatus = "unreachable" // Probe or session failed
)

// Device represents one inventory entry and its per-run state.
// Reachability and identity are each written by exactly one phase;
// a device lives for a single run.
type Device struct {
	Name     string       `json:"name" yaml:"name"`
	Addr     string       `json:"addr" yaml:"addr"`
	Role     string       `json:"role" yaml:"role"`
	Platform string       `json:"platform,omitempty" yaml:"platform,omitempty"`
	Status   DeviceStatus `json:"status" yaml:"-"`

	// Identity fields collected during provisioning
	Serial    string `json:"serial,omitempty" yaml:"-"`
	SystemMAC string `json:"system_mac,omitempty" yaml:"-"`
}

// NewDevice creates a device in the unknown state
func NewDevice(name, addr, role string) *Device {
	return &Device{
		Name:   name,
		Addr:   addr,
		Role:   role,
		Status: DeviceStatusUnknown,
	}
}

// Reachable reports whether the device is currently classified reachable
func (d *Device) Reachable() bool {
	return d.Status == DeviceStatusReachable
}

// SetIdentity records the collected hardware identity
func (d *Device) SetIdentity(serial, systemMAC string) {
	d.Serial = serial
	d.SystemMAC = systemMAC
}

// SanitizedName returns the hostname lowered and reduced to [a-z0-9-],
// suitable for artifact filenames and lab node names. Runs of invalid
// characters collapse to a single dash.
func (d *Device) SanitizedName() string {
	return SanitizeName(d.Name)
}

// SanitizeName normalizes an arbitrary device name for filesystem and
// lab-node use
func SanitizeName(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
