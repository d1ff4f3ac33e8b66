// Package persistence provides SQLite-backed storage for saved games, the
// cross-game legacy and the archived event log.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ncruces/go-strftime"
	_ "modernc.org/sqlite"

	"github.com/talgya/lobster-tycoon/internal/engine"
)

// ErrNoSnapshot is returned when a save slot is empty.
var ErrNoSnapshot = errors.New("no saved game in slot")

const timeLayout = "%Y-%m-%d %H:%M:%S"

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Compile-time check that DB can back a game's legacy.
var _ engine.LegacyStore = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS legacy_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		unlocked_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		slot TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		day INTEGER NOT NULL,
		cash REAL NOT NULL,
		outcome TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed INTEGER NOT NULL,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_seed_day ON events(seed, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) stamp() string {
	return strftime.Format(timeLayout, db.now().UTC())
}

// ── Legacy ────────────────────────────────────────────────────────────

// LoadLegacy reads the carried-over record. An empty database yields the
// zero legacy.
func (db *DB) LoadLegacy(ctx context.Context) (engine.Legacy, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.SelectContext(ctx, &rows, "SELECT key, value FROM legacy_meta"); err != nil {
		return engine.Legacy{}, fmt.Errorf("load legacy: %w", err)
	}

	var l engine.Legacy
	for _, r := range rows {
		var err error
		switch r.Key {
		case "prestige":
			l.Prestige, err = strconv.Atoi(r.Value)
		case "games_completed":
			l.GamesCompleted, err = strconv.Atoi(r.Value)
		case "lifetime_earnings":
			l.LifetimeEarnings, err = strconv.ParseFloat(r.Value, 64)
		case "best_cash":
			l.BestCash, err = strconv.ParseFloat(r.Value, 64)
		}
		if err != nil {
			return engine.Legacy{}, fmt.Errorf("load legacy %s: %w", r.Key, err)
		}
	}

	if err := db.conn.SelectContext(ctx, &l.Achievements,
		"SELECT id FROM achievements ORDER BY unlocked_at, rowid"); err != nil {
		return engine.Legacy{}, fmt.Errorf("load achievements: %w", err)
	}
	return l, nil
}

// SaveLegacy writes the legacy. Achievements are only ever added.
func (db *DB) SaveLegacy(ctx context.Context, l engine.Legacy) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := map[string]string{
		"prestige":          strconv.Itoa(l.Prestige),
		"games_completed":   strconv.Itoa(l.GamesCompleted),
		"lifetime_earnings": strconv.FormatFloat(l.LifetimeEarnings, 'f', 2, 64),
		"best_cash":         strconv.FormatFloat(l.BestCash, 'f', 2, 64),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO legacy_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save legacy %s: %w", k, err)
		}
	}

	stmt, err := tx.PreparexContext(ctx, "INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := db.stamp()
	for _, id := range l.Achievements {
		if _, err := stmt.ExecContext(ctx, id, now); err != nil {
			return fmt.Errorf("save achievement %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// ── Snapshots ─────────────────────────────────────────────────────────

// SnapshotInfo describes a saved game without loading it.
type SnapshotInfo struct {
	Slot    string  `db:"slot" json:"slot"`
	Seed    int64   `db:"seed" json:"seed"`
	Day     int     `db:"day" json:"day"`
	Cash    float64 `db:"cash" json:"cash"`
	Outcome string  `db:"outcome" json:"outcome"`
	SavedAt string  `db:"saved_at" json:"saved_at"`
}

// SaveSnapshot stores a game state in a slot, replacing what was there.
func (db *DB) SaveSnapshot(ctx context.Context, slot string, s *engine.State) error {
	if s == nil {
		return fmt.Errorf("save %s: %w", slot, engine.ErrInvalidSnapshot)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots
		(slot, seed, day, cash, outcome, saved_at, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		slot, s.Seed, s.Day, s.Cash, string(s.Outcome), db.stamp(), string(data),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	slog.Info("game saved", "slot", slot, "day", s.Day, "bytes", len(data))
	return nil
}

// LoadSnapshot reads a saved game state.
func (db *DB) LoadSnapshot(ctx context.Context, slot string) (*engine.State, error) {
	var data string
	err := db.conn.GetContext(ctx, &data, "SELECT state_json FROM snapshots WHERE slot = ?", slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", slot, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}

	var s engine.State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", slot, err)
	}
	return &s, nil
}

// Snapshots lists the saved games, most recent first.
func (db *DB) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	var out []SnapshotInfo
	err := db.conn.SelectContext(ctx, &out,
		"SELECT slot, seed, day, cash, outcome, saved_at FROM snapshots ORDER BY saved_at DESC, slot")
	return out, err
}

// DeleteSnapshot empties a slot.
func (db *DB) DeleteSnapshot(ctx context.Context, slot string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM snapshots WHERE slot = ?", slot)
	return err
}

// ── Events ────────────────────────────────────────────────────────────

// ArchiveEvents appends events to the long-term log of a game.
func (db *DB) ArchiveEvents(ctx context.Context, seed int64, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO events (seed, day, category, message) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, seed, e.Day, e.Category, e.Message); err != nil {
			return fmt.Errorf("archive event: %w", err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent events of a game, oldest first.
func (db *DB) RecentEvents(ctx context.Context, seed int64, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.SelectContext(ctx, &events,
		`SELECT day, category, message FROM (
			SELECT id, day, category, message FROM events
			WHERE seed = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`,
		seed, limit,
	)
	return events, err
}
