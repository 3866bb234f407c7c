package domain

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already clean", input: "leaf1", want: "leaf1"},
		{name: "uppercase lowered", input: "CORE-SW01", want: "core-sw01"},
		{name: "dots collapse to dash", input: "spine1.site.example.com", want: "spine1-site-example-com"},
		{name: "whitespace trimmed", input: "  fw1  ", want: "fw1"},
		{name: "runs of junk collapse", input: "lab//dev__3", want: "lab-dev-3"},
		{name: "trailing junk dropped", input: "leaf2.", want: "leaf2"},
		{name: "leading junk dropped", input: "!leaf3", want: "leaf3"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewDevice(t *testing.T) {
	t.Run("starts unknown", func(t *testing.T) {
		d := NewDevice("leaf1", "10.0.0.11", "leaf")
		if d.Status != DeviceStatusUnknown {
			t.Errorf("expected status %s, got %s", DeviceStatusUnknown, d.Status)
		}
		if d.Reachable() {
			t.Error("expected new device not to be reachable")
		}
	})

	t.Run("reachable after status change", func(t *testing.T) {
		d := NewDevice("leaf1", "10.0.0.11", "leaf")
		d.Status = DeviceStatusReachable
		if !d.Reachable() {
			t.Error("expected device to be reachable")
		}
	})
}

func TestDeviceSetIdentity(t *testing.T) {
	d := NewDevice("spine1", "10.0.0.1", "spine")
	d.SetIdentity("JPE12345678", "00:1c:73:aa:bb:cc")

	if d.Serial != "JPE12345678" {
		t.Errorf("expected serial JPE12345678, got %s", d.Serial)
	}
	if d.SystemMAC != "00:1c:73:aa:bb:cc" {
		t.Errorf("expected system MAC 00:1c:73:aa:bb:cc, got %s", d.SystemMAC)
	}
}
