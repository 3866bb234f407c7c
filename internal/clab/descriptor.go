// Package clab renders the inferred topology into a containerlab
// descriptor and drives the containerlab binary to deploy, inspect, and
// destroy the resulting lab.
package clab

// Descriptor is the containerlab topology file
type Descriptor struct {
	Name     string       `yaml:"name"`
	Mgmt     *MgmtNetwork `yaml:"mgmt,omitempty"`
	Topology TopologySpec `yaml:"topology"`
}

// MgmtNetwork configures the lab management network
type MgmtNetwork struct {
	Network    string `yaml:"network,omitempty"`
	IPv4Subnet string `yaml:"ipv4-subnet,omitempty"`
}

// TopologySpec holds the lab nodes and links
type TopologySpec struct {
	Nodes map[string]NodeSpec `yaml:"nodes"`
	Links []LinkSpec          `yaml:"links,omitempty"`
}

// NodeSpec is one lab node
type NodeSpec struct {
	Kind          string            `yaml:"kind"`
	Image         string            `yaml:"image,omitempty"`
	StartupConfig string            `yaml:"startup-config,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
}

// LinkSpec is one wire between two node interfaces
type LinkSpec struct {
	Endpoints []string `yaml:"endpoints"`
}
