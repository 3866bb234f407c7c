package clab

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mirrorlab/internal/domain"
)

// Config controls how the lab descriptor is rendered
type Config struct {
	// Kind is the containerlab node kind for all inventory devices
	Kind string
	// Image is the container image for the nodes
	Image string
	// MgmtNetwork optionally names the lab management bridge
	MgmtNetwork string
	// MgmtSubnet optionally pins the management subnet
	MgmtSubnet string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Kind:  "ceos",
		Image: "ceos:latest",
	}
}

// Renderer maps the inferred topology onto a containerlab descriptor
type Renderer struct {
	config Config
}

// NewRenderer creates a renderer
func NewRenderer(config Config) *Renderer {
	return &Renderer{config: config}
}

// Render builds the descriptor for a site. Node names are sanitized
// hostnames; startup configs point at the provisioned artifacts relative
// to the lab directory; links whose endpoints do not both map to
// data-plane container interfaces are left out.
func (r *Renderer) Render(site string, topo *domain.Topology) *Descriptor {
	desc := &Descriptor{
		Name: strings.ToLower(site),
		Topology: TopologySpec{
			Nodes: make(map[string]NodeSpec, len(topo.Devices)),
		},
	}
	if r.config.MgmtNetwork != "" || r.config.MgmtSubnet != "" {
		desc.Mgmt = &MgmtNetwork{
			Network:    r.config.MgmtNetwork,
			IPv4Subnet: r.config.MgmtSubnet,
		}
	}

	for _, d := range topo.SortedDevices() {
		name := d.SanitizedName()
		node := NodeSpec{
			Kind:          r.config.Kind,
			Image:         r.config.Image,
			StartupConfig: filepath.Join("nodes", "configs", name+".cfg"),
		}
		env := make(map[string]string, 2)
		if d.Serial != "" {
			env["SERIALNUMBER"] = d.Serial
		}
		if d.SystemMAC != "" {
			env["SYSTEMMACADDR"] = d.SystemMAC
		}
		if len(env) > 0 {
			node.Env = env
		}
		desc.Topology.Nodes[name] = node
	}

	dropped := 0
	for _, l := range topo.SortedLinks() {
		a := MapInterface(r.config.Kind, l.A.Interface)
		b := MapInterface(r.config.Kind, l.B.Interface)
		if !Mappable(a) || !Mappable(b) {
			dropped++
			continue
		}
		desc.Topology.Links = append(desc.Topology.Links, LinkSpec{
			Endpoints: []string{
				domain.SanitizeName(l.A.Device) + ":" + a,
				domain.SanitizeName(l.B.Device) + ":" + b,
			},
		})
	}
	if dropped > 0 {
		slog.Debug("omitted links without data-plane interfaces", "count", dropped)
	}

	return desc
}

// Write marshals the descriptor into <dir>/<name>.clab.yml with
// two-space indentation and returns the file path
func (r *Renderer) Write(desc *Descriptor, dir string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(desc); err != nil {
		return "", fmt.Errorf("failed to marshal topology descriptor: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finish topology descriptor: %w", err)
	}

	path := DescriptorPath(dir, desc.Name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write topology descriptor: %w", err)
	}
	slog.Info("wrote containerlab topology",
		"path", path,
		"nodes", len(desc.Topology.Nodes),
		"links", len(desc.Topology.Links))
	return path, nil
}

// DescriptorPath returns where Write places the descriptor for a lab
// name, lowercased to match the layout on disk
func DescriptorPath(dir, name string) string {
	return filepath.Join(dir, strings.ToLower(name)+".clab.yml")
}
