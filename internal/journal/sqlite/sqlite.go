// Package sqlite implements the run journal on an embedded SQLite
// database, so a single binary needs no external store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mirrorlab/internal/journal"
)

// Journal implements journal.Journal using SQLite
type Journal struct {
	db *sql.DB
}

// New opens or creates the journal database at the given path
func New(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer, and in-memory databases live per
	// connection, so the pool must not grow past one
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		total INTEGER NOT NULL,
		reachable INTEGER NOT NULL,
		link_count INTEGER NOT NULL,
		confirmed INTEGER NOT NULL,
		one_sided INTEGER NOT NULL,
		lab_path TEXT
	);

	CREATE TABLE IF NOT EXISTS run_devices (
		run_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		addr TEXT,
		role TEXT,
		status TEXT NOT NULL,
		phase TEXT,
		reason TEXT,
		serial TEXT,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS run_links (
		run_id INTEGER NOT NULL,
		link_id TEXT NOT NULL,
		a_device TEXT NOT NULL,
		a_interface TEXT NOT NULL,
		b_device TEXT NOT NULL,
		b_interface TEXT NOT NULL,
		confirmed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, link_id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_run_devices_run ON run_devices(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_links_run ON run_links(run_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// RecordRun persists a completed run and all its details atomically
func (j *Journal) RecordRun(ctx context.Context, rec *journal.RunRecord) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (site, started_at, duration_ms, total, reachable, link_count, confirmed, one_sided, lab_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Site, rec.StartedAt.UTC(), rec.DurationMS, rec.Total, rec.Reachable,
		rec.LinkCount, rec.Confirmed, rec.OneSided, rec.LabPath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	deviceStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_devices (run_id, name, addr, role, status, phase, reason, serial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare device statement: %w", err)
	}
	defer deviceStmt.Close()

	for _, d := range rec.Devices {
		if _, err := deviceStmt.ExecContext(ctx, runID, d.Name, d.Addr, d.Role, d.Status, d.Phase, d.Reason, d.Serial); err != nil {
			return 0, fmt.Errorf("failed to insert device %s: %w", d.Name, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_links (run_id, link_id, a_device, a_interface, b_device, b_interface, confirmed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare link statement: %w", err)
	}
	defer linkStmt.Close()

	for _, l := range rec.Links {
		if _, err := linkStmt.ExecContext(ctx, runID, l.LinkID, l.ADevice, l.AInterface, l.BDevice, l.BInterface, boolToInt(l.Confirmed)); err != nil {
			return 0, fmt.Errorf("failed to insert link %s: %w", l.LinkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// ListRuns returns recent runs, newest first
func (j *Journal) ListRuns(ctx context.Context, site string, limit int) ([]journal.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, site, started_at, duration_ms, total, reachable, link_count, confirmed, one_sided, lab_path
		FROM runs
	`
	args := []any{}
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []journal.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun loads one run with full device and link details
func (j *Journal) GetRun(ctx context.Context, id int64) (*journal.RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, site, started_at, duration_ms, total, reachable, link_count, confirmed, one_sided, lab_path
		FROM runs WHERE id = ?
	`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	deviceRows, err := j.db.QueryContext(ctx, `
		SELECT name, addr, role, status, phase, reason, serial
		FROM run_devices WHERE run_id = ? ORDER BY name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run devices: %w", err)
	}
	defer deviceRows.Close()

	for deviceRows.Next() {
		var d journal.DeviceRecord
		var addr, role, phase, reason, serial sql.NullString
		if err := deviceRows.Scan(&d.Name, &addr, &role, &d.Status, &phase, &reason, &serial); err != nil {
			return nil, fmt.Errorf("failed to scan run device: %w", err)
		}
		d.Addr = addr.String
		d.Role = role.String
		d.Phase = phase.String
		d.Reason = reason.String
		d.Serial = serial.String
		rec.Devices = append(rec.Devices, d)
	}
	if err := deviceRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run devices: %w", err)
	}

	linkRows, err := j.db.QueryContext(ctx, `
		SELECT link_id, a_device, a_interface, b_device, b_interface, confirmed
		FROM run_links WHERE run_id = ? ORDER BY link_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var l journal.LinkRecord
		var confirmed int
		if err := linkRows.Scan(&l.LinkID, &l.ADevice, &l.AInterface, &l.BDevice, &l.BInterface, &confirmed); err != nil {
			return nil, fmt.Errorf("failed to scan run link: %w", err)
		}
		l.Confirmed = confirmed != 0
		rec.Links = append(rec.Links, l)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run links: %w", err)
	}

	return rec, nil
}

// Close releases the database handle
func (j *Journal) Close() error {
	return j.db.Close()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*journal.RunRecord, error) {
	var rec journal.RunRecord
	var started time.Time
	var labPath sql.NullString
	err := s.Scan(&rec.ID, &rec.Site, &started, &rec.DurationMS, &rec.Total,
		&rec.Reachable, &rec.LinkCount, &rec.Confirmed, &rec.OneSided, &labPath)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	rec.StartedAt = started
	rec.LabPath = labPath.String
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
