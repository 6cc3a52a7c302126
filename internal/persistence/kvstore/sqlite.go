package kvstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"quakecraft.ai/internal/sim/quake"
)

// SQLite is the world save file: a blob table for simulation state plus an
// append-only index of finished quakes. Blob reads and writes are synchronous;
// quake rows go through a buffered writer goroutine.
type SQLite struct {
	db     *sql.DB
	logger *log.Logger

	ch   chan quakeRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type quakeRow struct {
	At     time.Time
	Report quake.Report
}

// QuakeRecord is one row of the quake index.
type QuakeRecord struct {
	ID        int64
	At        string
	Magnitude int
	X, Y, Z   int
	Carved    int
	Loot      int
	Report    quake.Report
}

// OpenSQLite opens or creates the save file at path. Failed quake index
// writes are reported to logger; nil discards them.
func OpenSQLite(path string, logger *log.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &SQLite{db: db, logger: logger, ch: make(chan quakeRow, 1024)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quakes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			magnitude INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			carved INTEGER NOT NULL,
			loot INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quakes_magnitude ON quakes(magnitude);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// GetData returns the blob stored under key, or nil if there is none.
func (s *SQLite) GetData(key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var b []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key=?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return b, nil
}

func (s *SQLite) StoreData(key string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.Exec(`INSERT INTO kv(key,value,updated_at) VALUES(?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// RecordQuake queues a finished quake for the index. It never blocks the
// simulation; rows are dropped if the writer falls behind.
func (s *SQLite) RecordQuake(r quake.Report) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- quakeRow{At: time.Now().UTC(), Report: r}:
	default:
		s.logger.Printf("quake index: writer behind, dropped m%d at %v", r.Magnitude, r.Center)
	}
}

func (s *SQLite) loop() {
	for row := range s.ch {
		if err := s.insertQuake(row); err != nil {
			s.logger.Printf("quake index: insert m%d at %v: %v", row.Report.Magnitude, row.Report.Center, err)
		}
	}
}

func (s *SQLite) insertQuake(row quakeRow) error {
	raw, err := json.Marshal(row.Report)
	if err != nil {
		return err
	}
	r := row.Report
	_, err = s.db.Exec(`INSERT INTO quakes(recorded_at,magnitude,x,y,z,carved,loot,raw_json) VALUES(?,?,?,?,?,?,?,?)`,
		row.At.Format(time.RFC3339Nano), r.Magnitude, r.Center.X, r.Center.Y, r.Center.Z, r.Carved, r.LootSpawned, string(raw))
	return err
}

// Quakes returns the most recent quake rows, newest first.
func (s *SQLite) Quakes(limit int) ([]QuakeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id,recorded_at,magnitude,x,y,z,carved,loot,raw_json FROM quakes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuakeRecord
	for rows.Next() {
		var rec QuakeRecord
		var raw string
		if err := rows.Scan(&rec.ID, &rec.At, &rec.Magnitude, &rec.X, &rec.Y, &rec.Z, &rec.Carved, &rec.Loot, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &rec.Report); err != nil {
			return nil, fmt.Errorf("quake %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
