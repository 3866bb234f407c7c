package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mirrorlab/internal/domain"
)

func TestParseInventory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		site    string
		wantErr bool
		want    int
	}{
		{
			name: "plain list",
			input: `
devices:
  - name: spine1
    addr: 10.0.0.1
    role: spine-router-switch
  - name: leaf1
    addr: 10.0.0.11/24
`,
			site: "dc1",
			want: 2,
		},
		{
			name: "matching site declared",
			input: `
site: DC1
devices:
  - name: spine1
    addr: 10.0.0.1
`,
			site: "dc1",
			want: 1,
		},
		{
			name: "wrong site rejected",
			input: `
site: dc2
devices:
  - name: spine1
    addr: 10.0.0.1
`,
			site:    "dc1",
			wantErr: true,
		},
		{
			name: "nameless device rejected",
			input: `
devices:
  - addr: 10.0.0.1
`,
			site:    "dc1",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			input:   "devices: [",
			site:    "dc1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, err := parseInventory([]byte(tt.input), tt.site)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInventory() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(devices) != tt.want {
				t.Errorf("expected %d devices, got %d", tt.want, len(devices))
			}
		})
	}
}

func TestParseInventoryStripsPrefix(t *testing.T) {
	devices, err := parseInventory([]byte(`
devices:
  - name: leaf1
    addr: 10.0.0.11/24
`), "dc1")
	if err != nil {
		t.Fatal(err)
	}
	if devices[0].Addr != "10.0.0.11" {
		t.Errorf("expected prefix length stripped, got %q", devices[0].Addr)
	}
	if devices[0].Status != domain.DeviceStatusUnknown {
		t.Errorf("expected unknown status, got %s", devices[0].Status)
	}
}

func TestFileDevices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.yaml")
	content := `
devices:
  - name: spine1
    addr: 10.0.0.1
    platform: eos
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFile(path)
	devices, err := src.Devices(context.Background(), "dc1")
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Platform != "eos" {
		t.Errorf("unexpected devices: %+v", devices)
	}

	t.Run("missing file", func(t *testing.T) {
		src := NewFile(filepath.Join(dir, "nope.yaml"))
		if _, err := src.Devices(context.Background(), "dc1"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
