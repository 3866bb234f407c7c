package domain

import "testing"

func TestTopologyAddLink(t *testing.T) {
	t.Run("deduplicates unordered pairs", func(t *testing.T) {
		topo := NewTopology()
		added1 := topo.AddLink(NewLink(Endpoint{"leaf1", "Ethernet49"}, Endpoint{"spine1", "Ethernet1"}))
		added2 := topo.AddLink(NewLink(Endpoint{"spine1", "Ethernet1"}, Endpoint{"leaf1", "Ethernet49"}))

		if !added1 {
			t.Error("expected first observation to be added")
		}
		if added2 {
			t.Error("expected reversed duplicate to collapse")
		}
		if topo.LinkCount() != 1 {
			t.Errorf("expected 1 link, got %d", topo.LinkCount())
		}
	})

	t.Run("confirmed observation upgrades existing link", func(t *testing.T) {
		topo := NewTopology()
		oneSided := NewLink(Endpoint{"leaf1", "Ethernet49"}, Endpoint{"spine1", "Ethernet1"})
		topo.AddLink(oneSided)

		confirmed := NewLink(Endpoint{"spine1", "Ethernet1"}, Endpoint{"leaf1", "Ethernet49"})
		confirmed.Confirmed = true
		topo.AddLink(confirmed)

		if topo.LinkCount() != 1 {
			t.Fatalf("expected 1 link, got %d", topo.LinkCount())
		}
		if !topo.Links[0].Confirmed {
			t.Error("expected link to be upgraded to confirmed")
		}
	})

	t.Run("confirmed link never downgraded", func(t *testing.T) {
		topo := NewTopology()
		confirmed := NewLink(Endpoint{"leaf1", "Ethernet49"}, Endpoint{"spine1", "Ethernet1"})
		confirmed.Confirmed = true
		topo.AddLink(confirmed)

		topo.AddLink(NewLink(Endpoint{"leaf1", "Ethernet49"}, Endpoint{"spine1", "Ethernet1"}))

		if !topo.Links[0].Confirmed {
			t.Error("expected link to stay confirmed")
		}
	})

	t.Run("parallel links kept apart", func(t *testing.T) {
		topo := NewTopology()
		topo.AddLink(NewLink(Endpoint{"leaf1", "Ethernet49"}, Endpoint{"spine1", "Ethernet1"}))
		topo.AddLink(NewLink(Endpoint{"leaf1", "Ethernet50"}, Endpoint{"spine1", "Ethernet2"}))

		if topo.LinkCount() != 2 {
			t.Errorf("expected 2 links, got %d", topo.LinkCount())
		}
	})
}

func TestTopologyDeviceLookup(t *testing.T) {
	topo := NewTopology()
	topo.AddDevice(NewDevice("Core-SW01", "10.0.0.1", "core"))

	t.Run("lookup by raw name", func(t *testing.T) {
		if _, ok := topo.Device("Core-SW01"); !ok {
			t.Error("expected lookup by original name to succeed")
		}
	})

	t.Run("lookup by sanitized name", func(t *testing.T) {
		if _, ok := topo.Device("core-sw01"); !ok {
			t.Error("expected lookup by sanitized name to succeed")
		}
	})

	t.Run("missing device", func(t *testing.T) {
		if _, ok := topo.Device("leaf9"); ok {
			t.Error("expected lookup of unknown device to fail")
		}
	})
}

func TestTopologySortedOutput(t *testing.T) {
	topo := NewTopology()
	topo.AddDevice(NewDevice("spine1", "10.0.0.1", "spine"))
	topo.AddDevice(NewDevice("leaf2", "10.0.0.12", "leaf"))
	topo.AddDevice(NewDevice("leaf1", "10.0.0.11", "leaf"))
	topo.AddLink(NewLink(Endpoint{"spine1", "Ethernet2"}, Endpoint{"leaf2", "Ethernet49"}))
	topo.AddLink(NewLink(Endpoint{"spine1", "Ethernet1"}, Endpoint{"leaf1", "Ethernet49"}))

	devices := topo.SortedDevices()
	if devices[0].Name != "leaf1" || devices[1].Name != "leaf2" || devices[2].Name != "spine1" {
		t.Errorf("expected devices sorted by name, got %s, %s, %s",
			devices[0].Name, devices[1].Name, devices[2].Name)
	}

	links := topo.SortedLinks()
	if links[0].Key() > links[1].Key() {
		t.Error("expected links sorted by key")
	}
}
