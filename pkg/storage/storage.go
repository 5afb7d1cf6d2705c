// Package storage persists normalized feed snapshots in SQLite. One
// snapshot per feed; every successful fetch overwrites it wholesale, and a
// failed fetch reads it back. There is no merging or versioning.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dealscope/pkg/dataset"
)

// ErrNoSnapshot is returned by LoadSnapshot when a feed has never been
// fetched successfully.
var ErrNoSnapshot = errors.New("no snapshot for feed")

const dateLayout = "2006-01-02"

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  feed        TEXT PRIMARY KEY,
  label       TEXT NOT NULL,
  fetched_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS activity_records (
  id                 INTEGER PRIMARY KEY,
  feed               TEXT NOT NULL,
  associate          TEXT NOT NULL,
  occurred_on        TEXT NOT NULL,
  week_start         TEXT NOT NULL,
  associate_error    INTEGER NOT NULL CHECK (associate_error IN (0,1)),
  team_error         INTEGER NOT NULL CHECK (team_error IN (0,1)),
  error_type         TEXT NOT NULL,
  fan_index          INTEGER NOT NULL DEFAULT 0,
  completion_minutes REAL,
  item_label         TEXT
);
CREATE INDEX IF NOT EXISTS idx_records_feed ON activity_records(feed);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Snapshot is a persisted dataset plus the provenance metadata the dashboard
// shows when it falls back to cached data.
type Snapshot struct {
	Feed      string
	Label     string
	FetchedAt time.Time
	Records   []dataset.ActivityRecord
}

// SnapshotInfo summarizes a persisted snapshot without loading its records.
type SnapshotInfo struct {
	Feed        string
	Label       string
	FetchedAt   time.Time
	RecordCount int
}

// SaveSnapshot replaces the persisted snapshot for a feed wholesale. The
// last successful fetch always wins.
func (d *DB) SaveSnapshot(ctx context.Context, feedKey, label string, records []dataset.ActivityRecord, fetchedAt time.Time) error {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM activity_records WHERE feed = ?`, feedKey); err != nil {
		return err
	}
	for _, r := range records {
		var minutes interface{}
		if r.CompletionMinutes != nil {
			minutes = *r.CompletionMinutes
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO activity_records(feed, associate, occurred_on, week_start, associate_error, team_error, error_type, fan_index, completion_minutes, item_label)
			 VALUES(?,?,?,?,?,?,?,?,?,?)`,
			feedKey, r.Associate, r.OccurredOn.Format(dateLayout), r.WeekStart.Format(dateLayout),
			boolToInt(r.HasAssociateError), boolToInt(r.HasTeamError), r.ErrorType, r.FanIndex, minutes, nullIfEmpty(r.ItemLabel))
		if err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots(feed, label, fetched_at) VALUES(?,?,?)
		 ON CONFLICT(feed) DO UPDATE SET label = excluded.label, fetched_at = excluded.fetched_at`,
		feedKey, label, fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSnapshot returns the persisted records for a feed together with the
// original fetch time, which is what the dashboard reports when showing
// cached data.
func (d *DB) LoadSnapshot(ctx context.Context, feedKey string) (*Snapshot, error) {
	snap := &Snapshot{Feed: feedKey}

	var fetchedAt string
	err := d.sql.QueryRowContext(ctx, `SELECT label, fetched_at FROM snapshots WHERE feed = ?`, feedKey).
		Scan(&snap.Label, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	if snap.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
		return nil, fmt.Errorf("bad fetched_at for feed %s: %w", feedKey, err)
	}

	rows, err := d.sql.QueryContext(ctx,
		`SELECT associate, occurred_on, week_start, associate_error, team_error, error_type, fan_index, completion_minutes, item_label
		 FROM activity_records WHERE feed = ? ORDER BY id`, feedKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         dataset.ActivityRecord
			occurred  string
			week      string
			assocErr  int
			teamErr   int
			minutes   sql.NullFloat64
			itemLabel sql.NullString
		)
		if err := rows.Scan(&r.Associate, &occurred, &week, &assocErr, &teamErr, &r.ErrorType, &r.FanIndex, &minutes, &itemLabel); err != nil {
			return nil, err
		}
		if r.OccurredOn, err = time.ParseInLocation(dateLayout, occurred, time.Local); err != nil {
			return nil, err
		}
		if r.WeekStart, err = time.ParseInLocation(dateLayout, week, time.Local); err != nil {
			return nil, err
		}
		r.HasAssociateError = assocErr == 1
		r.HasTeamError = teamErr == 1
		if minutes.Valid {
			m := minutes.Float64
			r.CompletionMinutes = &m
		}
		r.ItemLabel = itemLabel.String
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots summarizes every persisted snapshot, for the CLI tables.
func (d *DB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT s.feed, s.label, s.fetched_at, COUNT(r.id)
		FROM snapshots s
		LEFT JOIN activity_records r ON r.feed = s.feed
		GROUP BY s.feed, s.label, s.fetched_at
		ORDER BY s.feed`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var fetchedAt string
		if err := rows.Scan(&info.Feed, &info.Label, &fetchedAt, &info.RecordCount); err != nil {
			return nil, err
		}
		if info.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
