package domain

import "sort"

// Topology is the inferred link-level graph: the devices that survived
// every phase plus the deduplicated link set. Built once by the topology
// builder and handed by reference to the renderer.
type Topology struct {
	Devices map[string]*Device `json:"devices"`
	Links   []*Link            `json:"links"`

	// byKey indexes links by their unordered endpoint identity
	byKey map[string]*Link
}

// NewTopology creates an empty topology
func NewTopology() *Topology {
	return &Topology{
		Devices: make(map[string]*Device),
		byKey:   make(map[string]*Link),
	}
}

// AddDevice includes a device in the topology, keyed by sanitized name
func (t *Topology) AddDevice(d *Device) {
	t.Devices[d.SanitizedName()] = d
}

// Device looks up an included device by sanitized name
func (t *Topology) Device(name string) (*Device, bool) {
	d, ok := t.Devices[SanitizeName(name)]
	return d, ok
}

// AddLink inserts a link, collapsing duplicates by unordered endpoint
// identity. A confirmed observation upgrades an existing unconfirmed
// link; it is never downgraded. Returns true if the link was new.
func (t *Topology) AddLink(l *Link) bool {
	key := l.Key()
	if existing, ok := t.byKey[key]; ok {
		if l.Confirmed {
			existing.Confirmed = true
		}
		return false
	}
	t.byKey[key] = l
	t.Links = append(t.Links, l)
	return true
}

// LinkCount returns the number of deduplicated links
func (t *Topology) LinkCount() int {
	return len(t.Links)
}

// SortedLinks returns the links ordered by canonical key, so renders
// and exports are stable across runs
func (t *Topology) SortedLinks() []*Link {
	out := make([]*Link, len(t.Links))
	copy(out, t.Links)
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// SortedDevices returns included devices ordered by sanitized name
func (t *Topology) SortedDevices() []*Device {
	names := make([]string, 0, len(t.Devices))
	for name := range t.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Device, 0, len(names))
	for _, name := range names {
		out = append(out, t.Devices[name])
	}
	return out
}
