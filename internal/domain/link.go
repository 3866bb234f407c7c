package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Endpoint is one side of a link: a device plus the interface facing
// the other side
type Endpoint struct {
	Device    string `json:"device"`
	Interface string `json:"interface"`
}

func (e Endpoint) String() string {
	return e.Device + ":" + e.Interface
}

// Link is an undirected edge between two device interfaces. Identity is
// the unordered endpoint pair: two observations describe the same link
// iff their endpoint sets match, regardless of which side reported them.
type Link struct {
	ID string   `json:"id"`
	A  Endpoint `json:"a"`
	B  Endpoint `json:"b"`

	// Confirmed is true when both endpoints independently reported the
	// adjacency; false for one-sided visibility
	Confirmed bool `json:"confirmed"`
}

// NewLink creates a normalized link between two endpoints
func NewLink(a, b Endpoint) *Link {
	l := &Link{A: a, B: b}
	l.Normalize()
	l.ID = l.GenerateID()
	return l
}

// Normalize orders the endpoints so that A sorts before B, making the
// stored form independent of reporting direction
func (l *Link) Normalize() {
	if endpointLess(l.B, l.A) {
		l.A, l.B = l.B, l.A
	}
}

func endpointLess(x, y Endpoint) bool {
	if x.Device != y.Device {
		return x.Device < y.Device
	}
	return x.Interface < y.Interface
}

// Key returns the canonical identity string for the unordered endpoint
// pair. Comparison is case-insensitive on device names, matching how
// neighbor tables report them.
func (l *Link) Key() string {
	a, b := l.A, l.B
	a.Device = strings.ToLower(a.Device)
	b.Device = strings.ToLower(b.Device)
	if endpointLess(b, a) {
		a, b = b, a
	}
	return a.String() + "--" + b.String()
}

// GenerateID creates a deterministic short ID from the normalized endpoints
func (l *Link) GenerateID() string {
	hash := sha256.Sum256([]byte(l.Key()))
	return fmt.Sprintf("%x", hash[:8])
}

// Involves checks if this link touches the given device name
func (l *Link) Involves(device string) bool {
	return equalFoldTrim(l.A.Device, device) || equalFoldTrim(l.B.Device, device)
}

// SelfLoop reports whether both endpoints belong to the same device
func (l *Link) SelfLoop() bool {
	return equalFoldTrim(l.A.Device, l.B.Device)
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
