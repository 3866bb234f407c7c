package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the effective configuration: defaults, then an optional
// YAML config file, then environment variables. Flag overrides are
// applied afterwards by the CLI layer.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MIRRORLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("mirrorlab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mirrorlab")
		v.AddConfigPath("/etc/mirrorlab")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return materialize(v), nil
}

// bindLegacyEnv maps the unprefixed variables the tool has always
// honored onto their config keys
func bindLegacyEnv(v *viper.Viper) {
	v.BindEnv("inventory.netbox_url", "NETBOX_URL")
	v.BindEnv("inventory.netbox_token", "NETBOX_TOKEN")
	v.BindEnv("session.username", "DEVICE_USERNAME")
	v.BindEnv("session.password", "DEVICE_PASSWORD")
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("site", "")
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("log_level", def.LogLevel)

	v.SetDefault("inventory.netbox_url", "")
	v.SetDefault("inventory.netbox_token", "")
	v.SetDefault("inventory.file", "")
	v.SetDefault("inventory.roles", def.Inventory.Roles)
	v.SetDefault("inventory.http_timeout", def.Inventory.HTTPTimeout)

	v.SetDefault("probe.skip", def.Probe.Skip)
	v.SetDefault("probe.strategy", def.Probe.Strategy)
	v.SetDefault("probe.port", def.Probe.Port)
	v.SetDefault("probe.timeout", def.Probe.Timeout)
	v.SetDefault("probe.privileged", def.Probe.Privileged)
	v.SetDefault("probe.max_concurrent", def.Probe.MaxConcurrent)

	v.SetDefault("session.port", def.Session.Port)
	v.SetDefault("session.username", "")
	v.SetDefault("session.password", "")
	v.SetDefault("session.connect_timeout", def.Session.ConnectTimeout)
	v.SetDefault("session.command_timeout", def.Session.CommandTimeout)
	v.SetDefault("session.max_concurrent", def.Session.MaxConcurrent)
	v.SetDefault("session.attempts", def.Session.Attempts)
	v.SetDefault("session.retry_backoff", def.Session.RetryBackoff)
	v.SetDefault("session.dial_rate", def.Session.DialRate)
	v.SetDefault("session.dial_burst", def.Session.DialBurst)

	v.SetDefault("neighbors.source", def.Neighbors.Source)
	v.SetDefault("neighbors.snmp_community", def.Neighbors.SNMPCommunity)
	v.SetDefault("neighbors.snmp_port", def.Neighbors.SNMPPort)

	v.SetDefault("topology.aliases", map[string]string{})
	v.SetDefault("topology.keep_isolated", def.Topology.KeepIsolated)

	v.SetDefault("lab.kind", def.Lab.Kind)
	v.SetDefault("lab.image", def.Lab.Image)
	v.SetDefault("lab.mgmt_subnet", "")
	v.SetDefault("lab.binary", def.Lab.Binary)
	v.SetDefault("lab.deploy_timeout", def.Lab.DeployTimeout)
	v.SetDefault("lab.ansible", def.Lab.Ansible)

	v.SetDefault("journal.path", def.Journal.Path)

	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.username", def.Graph.Username)
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.database", "")
}

// materialize copies the resolved settings into the typed struct
func materialize(v *viper.Viper) *Config {
	return &Config{
		Site:      v.GetString("site"),
		OutputDir: v.GetString("output_dir"),
		LogLevel:  v.GetString("log_level"),
		Inventory: InventoryConfig{
			NetBoxURL:   strings.TrimRight(v.GetString("inventory.netbox_url"), "/"),
			NetBoxToken: v.GetString("inventory.netbox_token"),
			File:        v.GetString("inventory.file"),
			Roles:       v.GetStringSlice("inventory.roles"),
			HTTPTimeout: v.GetDuration("inventory.http_timeout"),
		},
		Probe: ProbeConfig{
			Skip:          v.GetBool("probe.skip"),
			Strategy:      v.GetString("probe.strategy"),
			Port:          v.GetInt("probe.port"),
			Timeout:       v.GetDuration("probe.timeout"),
			Privileged:    v.GetBool("probe.privileged"),
			MaxConcurrent: v.GetInt("probe.max_concurrent"),
		},
		Session: SessionConfig{
			Port:           v.GetInt("session.port"),
			Username:       v.GetString("session.username"),
			Password:       v.GetString("session.password"),
			ConnectTimeout: v.GetDuration("session.connect_timeout"),
			CommandTimeout: v.GetDuration("session.command_timeout"),
			MaxConcurrent:  v.GetInt("session.max_concurrent"),
			Attempts:       v.GetInt("session.attempts"),
			RetryBackoff:   v.GetDuration("session.retry_backoff"),
			DialRate:       v.GetFloat64("session.dial_rate"),
			DialBurst:      v.GetInt("session.dial_burst"),
		},
		Neighbors: NeighborsConfig{
			Source:        v.GetString("neighbors.source"),
			SNMPCommunity: v.GetString("neighbors.snmp_community"),
			SNMPPort:      v.GetInt("neighbors.snmp_port"),
		},
		Topology: TopologyConfig{
			Aliases:      v.GetStringMapString("topology.aliases"),
			KeepIsolated: v.GetBool("topology.keep_isolated"),
		},
		Lab: LabConfig{
			Kind:          v.GetString("lab.kind"),
			Image:         v.GetString("lab.image"),
			MgmtSubnet:    v.GetString("lab.mgmt_subnet"),
			Binary:        v.GetString("lab.binary"),
			DeployTimeout: v.GetDuration("lab.deploy_timeout"),
			Ansible:       v.GetBool("lab.ansible"),
		},
		Journal: JournalConfig{
			Path: v.GetString("journal.path"),
		},
		Graph: GraphConfig{
			URI:      v.GetString("graph.uri"),
			Username: v.GetString("graph.username"),
			Password: v.GetString("graph.password"),
			Database: v.GetString("graph.database"),
		},
	}
}
