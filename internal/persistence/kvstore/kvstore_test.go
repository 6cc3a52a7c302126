package kvstore

import (
	"bytes"
	"database/sql"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/schedule"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

var (
	_ schedule.KV = (*SQLite)(nil)
	_ schedule.KV = (*MemStore)(nil)
)

func TestMemStore_RoundTrip(t *testing.T) {
	m := NewMemStore()
	if b, err := m.GetData("missing"); err != nil || b != nil {
		t.Fatalf("missing key: %v %v", b, err)
	}
	in := []byte{1, 2, 3}
	if err := m.StoreData("k", in); err != nil {
		t.Fatalf("StoreData: %v", err)
	}
	in[0] = 9
	out, err := m.GetData("k")
	if err != nil || !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Fatalf("GetData: %v %v", out, err)
	}
	_ = m.Close()
	if err := m.StoreData("k", in); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSQLite_BlobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if b, err := s.GetData(schedule.Key); err != nil || b != nil {
		t.Fatalf("empty store: %v %v", b, err)
	}
	if err := s.StoreData(schedule.Key, []byte("one")); err != nil {
		t.Fatalf("StoreData: %v", err)
	}
	if err := s.StoreData(schedule.Key, []byte("two")); err != nil {
		t.Fatalf("StoreData overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.GetData(schedule.Key); err != ErrClosed {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}

	s, err = OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	b, err := s.GetData(schedule.Key)
	if err != nil || string(b) != "two" {
		t.Fatalf("GetData after reopen: %q %v", b, err)
	}
}

func TestSQLite_ScheduleSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	cal := &calendar.Fixed{Y: 4, M: 2, D: 1}
	cfg := tuning.Defaults()
	cfg.Normalize()

	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	first := schedule.NewStore(schedule.StoreConfig{KV: s, Tuning: cfg, Calendar: calendar.New(cal)})
	if !first.EnsureCurrent() {
		t.Fatalf("expected a generated schedule")
	}
	want := first.Current().Clone()
	_ = s.Close()

	s, err = OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	second := schedule.NewStore(schedule.StoreConfig{KV: s, Tuning: cfg, Calendar: calendar.New(cal)})
	if second.EnsureCurrent() {
		t.Fatalf("expected the persisted schedule to be reused")
	}
	got := second.Current()
	if got.Year != want.Year || len(got.Events) != len(want.Events) {
		t.Fatalf("schedule mismatch: got %+v want %+v", got, want)
	}
	for i := range want.Events {
		if got.Events[i].String() != want.Events[i].String() {
			t.Fatalf("event %d: got %s want %s", i, got.Events[i], want.Events[i])
		}
	}
}

func TestSQLite_RecordQuake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s.RecordQuake(quake.Report{Center: voxel.Vec3i{X: 1, Y: 101, Z: -4}, Magnitude: 6, Carved: 1200, LootSpawned: 70})
	s.RecordQuake(quake.Report{Center: voxel.Vec3i{X: 9, Y: 90, Z: 9}, Magnitude: 2, Carved: 80, LootSpawned: 40})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.RecordQuake(quake.Report{Magnitude: 9})

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM quakes`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows (closed store drops writes), got %d", n)
	}

	s, err = OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	recs, err := s.Quakes(10)
	if err != nil {
		t.Fatalf("Quakes: %v", err)
	}
	if len(recs) != 2 || recs[0].Magnitude != 2 || recs[1].Report.Carved != 1200 || recs[1].X != 1 || recs[1].Z != -4 {
		t.Fatalf("unexpected rows: %+v", recs)
	}
	if _, err := time.Parse(time.RFC3339Nano, recs[0].At); err != nil {
		t.Fatalf("recorded_at: %v", err)
	}
}

func TestSQLite_RecordQuakeLogsInsertFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	var buf bytes.Buffer
	s, err := OpenSQLite(path, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := s.db.Exec(`DROP TABLE quakes`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	s.RecordQuake(quake.Report{Center: voxel.Vec3i{X: 3, Y: 80, Z: 5}, Magnitude: 4})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "quake index: insert m4") || !strings.Contains(out, "quakes") {
		t.Fatalf("expected logged insert failure, got %q", out)
	}
}
