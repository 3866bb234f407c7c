package inventory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mirrorlab/internal/domain"
)

// File loads a static inventory from a YAML file, for sites without a
// NetBox instance or for pinned test fixtures. Devices are returned in
// file order; no role filtering is applied since the file is already an
// explicit operator selection.
type File struct {
	path string
}

// NewFile creates a file-backed inventory source
func NewFile(path string) *File {
	return &File{path: path}
}

// inventoryYAML is the file structure:
//
//	site: dc1
//	devices:
//	  - name: spine1
//	    addr: 10.0.0.1
//	    role: spine-router-switch
//	    platform: eos
type inventoryYAML struct {
	Site    string       `yaml:"site,omitempty"`
	Devices []deviceYAML `yaml:"devices"`
}

type deviceYAML struct {
	Name     string `yaml:"name"`
	Addr     string `yaml:"addr"`
	Role     string `yaml:"role,omitempty"`
	Platform string `yaml:"platform,omitempty"`
}

// Devices implements Source
func (f *File) Devices(ctx context.Context, site string) ([]*domain.Device, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}
	return parseInventory(data, site)
}

func parseInventory(data []byte, site string) ([]*domain.Device, error) {
	var doc inventoryYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse inventory file: %w", err)
	}

	if doc.Site != "" && !strings.EqualFold(doc.Site, site) {
		return nil, fmt.Errorf("inventory file is for site %q, not %q", doc.Site, site)
	}

	devices := make([]*domain.Device, 0, len(doc.Devices))
	for i, row := range doc.Devices {
		if row.Name == "" {
			return nil, fmt.Errorf("inventory file: device %d has no name", i)
		}
		// Addresses may carry a prefix length like NetBox exports do
		addr := strings.SplitN(row.Addr, "/", 2)[0]
		d := domain.NewDevice(row.Name, addr, row.Role)
		d.Platform = row.Platform
		devices = append(devices, d)
	}
	return devices, nil
}
