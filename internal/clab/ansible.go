package clab

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mirrorlab/internal/domain"
)

type ansibleInventory struct {
	All ansibleAll `yaml:"all"`
}

type ansibleAll struct {
	Children map[string]ansibleGroup `yaml:"children"`
}

type ansibleGroup struct {
	Hosts map[string]ansibleHost `yaml:"hosts"`
}

type ansibleHost struct {
	AnsibleHost string `yaml:"ansible_host"`
}

// WriteAnsibleInventory exports lab nodes grouped by device role for
// post-deploy configuration jobs. Hosts resolve through the names
// containerlab registers for lab containers (clab-<lab>-<node>).
func WriteAnsibleInventory(dir, lab string, topo *domain.Topology) (string, error) {
	inv := ansibleInventory{All: ansibleAll{Children: make(map[string]ansibleGroup)}}

	for _, d := range topo.SortedDevices() {
		group := d.Role
		if group == "" {
			group = "ungrouped"
		}
		if _, ok := inv.All.Children[group]; !ok {
			inv.All.Children[group] = ansibleGroup{Hosts: make(map[string]ansibleHost)}
		}
		name := d.SanitizedName()
		inv.All.Children[group].Hosts[name] = ansibleHost{
			AnsibleHost: fmt.Sprintf("clab-%s-%s", lab, name),
		}
	}

	data, err := yaml.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ansible inventory: %w", err)
	}
	path := filepath.Join(dir, "ansible-inventory.yml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write ansible inventory: %w", err)
	}
	return path, nil
}
