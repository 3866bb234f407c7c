// Package graph mirrors inferred topologies into a Neo4j database so
// that sites can be explored and queried across runs. Devices become
// :Device nodes keyed by a site-scoped id, physical adjacencies become
// :CONNECTS relationships carrying the interface pair and confirmation
// state. Export replaces the site's previous contents wholesale; the
// graph always reflects the latest run.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"mirrorlab/internal/domain"
)

// Config holds the Neo4j connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// DefaultConfig returns settings for a local unauthenticated instance.
func DefaultConfig() Config {
	return Config{
		URI:      "neo4j://localhost:7687",
		Database: "neo4j",
	}
}

// Exporter writes topologies to a Neo4j database.
type Exporter struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewExporter connects to Neo4j, verifies the instance is reachable and
// ensures the uniqueness constraint the export relies on.
func NewExporter(ctx context.Context, config Config) (*Exporter, error) {
	auth := neo4j.NoAuth()
	if config.Username != "" {
		auth = neo4j.BasicAuth(config.Username, config.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", config.URI, err)
	}

	e := &Exporter{driver: driver, database: config.Database}
	if err := e.run(ctx,
		`CREATE CONSTRAINT uniq_device_id IF NOT EXISTS
		FOR (d:Device)
		REQUIRE d.id IS UNIQUE`, nil); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to ensure device constraint: %w", err)
	}
	return e, nil
}

// Close releases the underlying driver.
func (e *Exporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// Export replaces the site's subgraph with the given topology. Earlier
// exports of the same site are deleted first so stale devices and links
// do not linger.
func (e *Exporter) Export(ctx context.Context, site string, topo *domain.Topology) error {
	site = strings.ToLower(site)

	if err := e.run(ctx,
		`MATCH (d:Device {site: $site}) DETACH DELETE d`,
		map[string]any{"site": site}); err != nil {
		return fmt.Errorf("failed to clear site %s: %w", site, err)
	}

	devices := topo.SortedDevices()
	for _, d := range devices {
		if err := e.run(ctx,
			`MERGE (d:Device {id: $id})
			SET d.site = $site, d.name = $name, d.role = $role,
			    d.addr = $addr, d.serial = $serial, d.system_mac = $system_mac`,
			deviceParams(site, d)); err != nil {
			return fmt.Errorf("failed to export device %s: %w", d.Name, err)
		}
	}

	links := topo.SortedLinks()
	for _, l := range links {
		if err := e.run(ctx,
			`MATCH (a:Device {id: $a})
			MATCH (b:Device {id: $b})
			MERGE (a)-[l:CONNECTS {id: $id}]->(b)
			SET l.a_interface = $a_interface, l.b_interface = $b_interface,
			    l.confirmed = $confirmed`,
			linkParams(site, l)); err != nil {
			return fmt.Errorf("failed to export link %s: %w", l.ID, err)
		}
	}

	slog.Info("exported topology to graph",
		"site", site,
		"devices", len(devices),
		"links", len(links))
	return nil
}

func (e *Exporter) run(ctx context.Context, cypher string, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	_, err := neo4j.ExecuteQuery(ctx, e.driver, cypher, args,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database))
	return err
}

// deviceID builds the site-scoped node identity. Names are sanitized the
// same way lab node names are, so the graph and the lab agree on keys.
func deviceID(site, name string) string {
	return strings.ToLower(site) + "/" + domain.SanitizeName(name)
}

func deviceParams(site string, d *domain.Device) map[string]any {
	return map[string]any{
		"id":         deviceID(site, d.Name),
		"site":       site,
		"name":       d.Name,
		"role":       d.Role,
		"addr":       d.Addr,
		"serial":     d.Serial,
		"system_mac": d.SystemMAC,
	}
}

func linkParams(site string, l *domain.Link) map[string]any {
	return map[string]any{
		"id":          l.ID,
		"a":           deviceID(site, l.A.Device),
		"b":           deviceID(site, l.B.Device),
		"a_interface": l.A.Interface,
		"b_interface": l.B.Interface,
		"confirmed":   l.Confirmed,
	}
}
