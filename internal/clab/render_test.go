package clab

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"mirrorlab/internal/domain"
)

func TestMapInterface(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		iface string
		want  string
	}{
		{name: "ceos ethernet", kind: "ceos", iface: "Ethernet1", want: "eth1"},
		{name: "ceos breakout", kind: "ceos", iface: "Ethernet3/1", want: "eth3_1"},
		{name: "ceos multi-slot", kind: "ceos", iface: "Ethernet49/1", want: "eth49_1"},
		{name: "ceos management untouched", kind: "ceos", iface: "Management1", want: "Management1"},
		{name: "ceos port-channel untouched", kind: "ceos", iface: "Port-Channel10", want: "Port-Channel10"},
		{name: "other kind untouched", kind: "linux", iface: "Ethernet1", want: "Ethernet1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapInterface(tt.kind, tt.iface); got != tt.want {
				t.Errorf("MapInterface(%s, %s) = %s, expected %s", tt.kind, tt.iface, got, tt.want)
			}
		})
	}
}

func TestMappable(t *testing.T) {
	if !Mappable("eth3_1") {
		t.Error("expected eth3_1 to be mappable")
	}
	if Mappable("Management1") {
		t.Error("expected Management1 to be unmappable")
	}
}

func labTopology() *domain.Topology {
	topo := domain.NewTopology()

	leaf := domain.NewDevice("LEAF1", "10.0.0.1", "access-leaf")
	leaf.Status = domain.DeviceStatusReachable
	leaf.SetIdentity("SSJ17010987", "00:1c:73:aa:bb:01")
	topo.AddDevice(leaf)

	spine := domain.NewDevice("spine1", "10.0.0.2", "spine")
	spine.Status = domain.DeviceStatusReachable
	spine.SetIdentity("SSJ17010988", "00:1c:73:aa:bb:02")
	topo.AddDevice(spine)

	topo.AddLink(domain.NewLink(
		domain.Endpoint{Device: "LEAF1", Interface: "Ethernet3/1"},
		domain.Endpoint{Device: "spine1", Interface: "Ethernet49/1"},
	))
	topo.AddLink(domain.NewLink(
		domain.Endpoint{Device: "LEAF1", Interface: "Management1"},
		domain.Endpoint{Device: "spine1", Interface: "Management1"},
	))
	return topo
}

func TestRender(t *testing.T) {
	desc := NewRenderer(DefaultConfig()).Render("NYC-DC1", labTopology())

	if desc.Name != "nyc-dc1" {
		t.Errorf("lab name = %s, expected lowercased site", desc.Name)
	}
	if len(desc.Topology.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(desc.Topology.Nodes))
	}

	leaf, ok := desc.Topology.Nodes["leaf1"]
	if !ok {
		t.Fatal("expected node leaf1 keyed by sanitized name")
	}
	if leaf.Kind != "ceos" {
		t.Errorf("node kind = %s, expected ceos", leaf.Kind)
	}
	if leaf.StartupConfig != "nodes/configs/leaf1.cfg" {
		t.Errorf("startup config = %s", leaf.StartupConfig)
	}
	if leaf.Env["SERIALNUMBER"] != "SSJ17010987" {
		t.Errorf("serial env = %s", leaf.Env["SERIALNUMBER"])
	}
	if leaf.Env["SYSTEMMACADDR"] != "00:1c:73:aa:bb:01" {
		t.Errorf("mac env = %s", leaf.Env["SYSTEMMACADDR"])
	}

	// management link dropped, data-plane link mapped
	if len(desc.Topology.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(desc.Topology.Links))
	}
	endpoints := desc.Topology.Links[0].Endpoints
	if endpoints[0] != "leaf1:eth3_1" || endpoints[1] != "spine1:eth49_1" {
		t.Errorf("endpoints = %v", endpoints)
	}
}

func TestRenderMgmtNetwork(t *testing.T) {
	config := DefaultConfig()
	config.MgmtNetwork = "mirrorlab"
	config.MgmtSubnet = "172.100.100.0/24"

	desc := NewRenderer(config).Render("dc1", domain.NewTopology())
	if desc.Mgmt == nil {
		t.Fatal("expected mgmt section")
	}
	if desc.Mgmt.Network != "mirrorlab" || desc.Mgmt.IPv4Subnet != "172.100.100.0/24" {
		t.Errorf("mgmt = %+v", desc.Mgmt)
	}

	desc = NewRenderer(DefaultConfig()).Render("dc1", domain.NewTopology())
	if desc.Mgmt != nil {
		t.Error("expected no mgmt section by default")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(DefaultConfig())
	desc := renderer.Render("dc1", labTopology())

	path, err := renderer.Write(desc, dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasSuffix(path, "dc1.clab.yml") {
		t.Errorf("path = %s, expected dc1.clab.yml", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read descriptor: %v", err)
	}

	var loaded Descriptor
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("descriptor does not round-trip: %v", err)
	}
	if loaded.Name != "dc1" {
		t.Errorf("loaded name = %s", loaded.Name)
	}
	if len(loaded.Topology.Nodes) != 2 || len(loaded.Topology.Links) != 1 {
		t.Errorf("loaded %d nodes and %d links", len(loaded.Topology.Nodes), len(loaded.Topology.Links))
	}
	if !strings.Contains(string(data), "startup-config: nodes/configs/leaf1.cfg") {
		t.Errorf("descriptor missing startup-config line:\n%s", string(data))
	}
}
