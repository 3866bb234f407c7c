// Package config provides configuration management for mirrorlab.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML
// config file, environment variables, command-line flags. The result is
// materialized into an immutable Config struct that is passed into each
// pipeline phase; no phase reads configuration globally.
//
// Config file locations (priority order):
//  1. path given with --config
//  2. ./mirrorlab.yaml
//  3. ~/.config/mirrorlab/mirrorlab.yaml
//  4. /etc/mirrorlab/mirrorlab.yaml
package config

import (
	"fmt"
	"time"
)

// Config is the complete runtime configuration for one invocation
type Config struct {
	Site      string
	OutputDir string
	LogLevel  string

	Inventory InventoryConfig
	Probe     ProbeConfig
	Session   SessionConfig
	Neighbors NeighborsConfig
	Topology  TopologyConfig
	Lab       LabConfig
	Journal   JournalConfig
	Graph     GraphConfig
}

// InventoryConfig controls where the device list comes from
type InventoryConfig struct {
	// NetBoxURL is the base URL of the NetBox instance
	NetBoxURL string
	// NetBoxToken authenticates API requests
	NetBoxToken string
	// File, when set, loads a static YAML inventory instead of NetBox
	File string
	// Roles is the allow-list of device roles to include
	Roles []string
	// HTTPTimeout bounds each NetBox API request
	HTTPTimeout time.Duration
}

// ProbeConfig controls the optional connectivity precheck
type ProbeConfig struct {
	// Skip bypasses the precheck entirely; devices enter provisioning
	// provisionally reachable
	Skip bool
	// Strategy selects the probe: tcp, icmp, or nmap
	Strategy string
	// Port is the TCP port dialed by the tcp strategy
	Port int
	// Timeout bounds one probe attempt
	Timeout time.Duration
	// Privileged sends raw ICMP instead of UDP ping; needs CAP_NET_RAW
	Privileged bool
	// MaxConcurrent limits parallel probes
	MaxConcurrent int
}

// SessionConfig controls the SSH session worker
type SessionConfig struct {
	Port int
	// Username and Password may come from env or the interactive prompt
	Username string
	Password string
	// ConnectTimeout bounds dial plus handshake
	ConnectTimeout time.Duration
	// CommandTimeout bounds one command execution
	CommandTimeout time.Duration
	// MaxConcurrent limits in-flight sessions system-wide
	MaxConcurrent int
	// Attempts is the total tries per operation; 1 disables retry
	Attempts int
	// RetryBackoff is the pause between attempts
	RetryBackoff time.Duration
	// DialRate and DialBurst feed the shared dial rate limiter
	DialRate  float64
	DialBurst int
}

// NeighborsConfig controls neighbor-table collection
type NeighborsConfig struct {
	// Source selects the collection mechanism: ssh or snmp
	Source string
	// SNMP settings used when Source is snmp
	SNMPCommunity string
	SNMPPort      int
}

// TopologyConfig controls link inference
type TopologyConfig struct {
	// Aliases maps reported neighbor names to inventory hostnames for
	// sites where LLDP system names do not match the directory
	Aliases map[string]string
	// KeepIsolated retains reachable devices with no resolved links as
	// isolated lab nodes
	KeepIsolated bool
}

// LabConfig controls containerlab rendering and deployment
type LabConfig struct {
	// Kind is the containerlab node kind for inventory devices
	Kind string
	// Image is the container image for that kind
	Image string
	// MgmtSubnet optionally pins the lab management network
	MgmtSubnet string
	// Binary is the containerlab executable
	Binary string
	// DeployTimeout is passed to containerlab deploy
	DeployTimeout time.Duration
	// Ansible also writes an Ansible inventory next to the topology
	Ansible bool
}

// JournalConfig controls the SQLite run journal
type JournalConfig struct {
	// Path is the database file; empty disables journaling
	Path string
}

// GraphConfig controls the optional Neo4j export
type GraphConfig struct {
	// URI enables the export when non-empty, e.g. neo4j://localhost:7687
	URI      string
	Username string
	Password string
	Database string
}

// DefaultConfig returns sensible defaults for a new invocation
func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
		LogLevel:  "info",
		Inventory: InventoryConfig{
			Roles:       DefaultRoles(),
			HTTPTimeout: 15 * time.Second,
		},
		Probe: ProbeConfig{
			Strategy:      "tcp",
			Port:          22,
			Timeout:       10 * time.Second,
			MaxConcurrent: 10,
		},
		Session: SessionConfig{
			Port:           22,
			ConnectTimeout: 10 * time.Second,
			CommandTimeout: 30 * time.Second,
			MaxConcurrent:  10,
			Attempts:       1,
			RetryBackoff:   2 * time.Second,
			DialRate:       5,
			DialBurst:      10,
		},
		Neighbors: NeighborsConfig{
			Source:        "ssh",
			SNMPCommunity: "public",
			SNMPPort:      161,
		},
		Topology: TopologyConfig{
			KeepIsolated: true,
		},
		Lab: LabConfig{
			Kind:          "ceos",
			Image:         "ceos:latest",
			Binary:        "containerlab",
			DeployTimeout: 4 * time.Minute,
		},
		Journal: JournalConfig{
			Path: "./mirrorlab.db",
		},
		Graph: GraphConfig{
			Username: "neo4j",
		},
	}
}

// DefaultRoles is the role allow-list applied to inventory queries
func DefaultRoles() []string {
	return []string{
		"core", "core-switch", "clubhouse", "dmz-switch", "edge-router-switch",
		"firewall", "l2-switch", "idf-switch", "l2-switch-enduser", "l2-switch-wifi",
		"l2-switch-wired", "lan-switch", "leaf-router-switch", "mpls-router",
		"oob-switch", "oob-vpn-router", "service-leaf-router-switch",
		"spine-router-switch", "stringer", "tapagg-switch", "transit-router-switch",
		"vpn-router",
	}
}

// Validate checks the fields every command depends on
func (c *Config) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("site is required")
	}
	if c.Inventory.File == "" && c.Inventory.NetBoxURL == "" {
		return fmt.Errorf("either an inventory file or a NetBox URL is required")
	}
	switch c.Probe.Strategy {
	case "tcp", "icmp", "nmap":
	default:
		return fmt.Errorf("unknown probe strategy %q", c.Probe.Strategy)
	}
	switch c.Neighbors.Source {
	case "ssh", "snmp":
	default:
		return fmt.Errorf("unknown neighbor source %q", c.Neighbors.Source)
	}
	if c.Probe.MaxConcurrent < 1 || c.Session.MaxConcurrent < 1 {
		return fmt.Errorf("concurrency limits must be at least 1")
	}
	if c.Session.Attempts < 1 {
		return fmt.Errorf("session attempts must be at least 1")
	}
	return nil
}
