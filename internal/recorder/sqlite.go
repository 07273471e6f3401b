package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends rebalance history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rebalance_cycles (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			status      TEXT NOT NULL,
			stage       TEXT,
			capital     REAL,
			planned     INTEGER,
			submitted   INTEGER,
			skipped     INTEGER,
			rejected    INTEGER,
			next_due    INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON rebalance_cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS order_submissions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			cycle_id    TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			notional    REAL,
			status      TEXT NOT NULL,
			order_id    TEXT,
			reason      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_cycle ON order_submissions(cycle_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	// Journals created before the skip/reject counts existed.
	for _, col := range []string{"skipped", "rejected"} {
		if err := r.addColumn("rebalance_cycles", col, "INTEGER"); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) addColumn(table, column, typ string) error {
	rows, err := r.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("table info %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	rows.Close()
	if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var nextDue int64
	if !rec.NextDue.IsZero() {
		nextDue = rec.NextDue.Unix()
	}
	_, err := r.db.Exec(`INSERT INTO rebalance_cycles
		(id, started_at, status, stage, capital, planned, submitted, skipped, rejected, next_due, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.Unix(), rec.Status, rec.Stage, rec.Capital,
		rec.Planned, rec.Submitted, rec.Skipped, rec.Rejected, nextDue, rec.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordOrder(rec *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO order_submissions
		(timestamp, cycle_id, symbol, notional, status, order_id, reason)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().Unix(), rec.CycleID, rec.Symbol, rec.Notional, rec.Status, rec.OrderID, rec.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
