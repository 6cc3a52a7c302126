// Package log writes the hourly-rotated, zstd-compressed JSONL journals of a world.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/quake"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

// WithClock replaces the rotation clock.
func (w *JSONLZstdWriter) WithClock(now func() time.Time) *JSONLZstdWriter {
	w.mu.Lock()
	w.now = now
	w.mu.Unlock()
	return w
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 32*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ReadJSONL decodes every line of a journal file into T.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []T
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// QuakeEntry is one finished main shock.
type QuakeEntry struct {
	Time   time.Time    `json:"time"`
	Report quake.Report `json:"report"`
}

// QuakeLogger writes one JSONL entry per completed quake (compressed).
type QuakeLogger struct {
	w   *JSONLZstdWriter
	now func() time.Time
}

func NewQuakeLogger(worldDir string) *QuakeLogger {
	return &QuakeLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "quakes"), "quakes"), now: time.Now}
}

func (l *QuakeLogger) WriteQuake(r quake.Report) error {
	return l.w.Write(QuakeEntry{Time: l.now().UTC(), Report: r})
}
func (l *QuakeLogger) Close() error { return l.w.Close() }

// NotificationEntry is one packet sent to players; PlayerID is empty for broadcasts.
type NotificationEntry struct {
	Time     time.Time             `json:"time"`
	PlayerID string                `json:"player_id,omitempty"`
	Packet   protocol.Notification `json:"packet"`
}

type Notifier interface {
	Broadcast(n protocol.Notification)
	Send(playerID string, n protocol.Notification)
}

// NotificationLogger journals every notification and forwards it to Next.
// Journal write failures are reported to OnError and never block delivery.
type NotificationLogger struct {
	Next    Notifier
	OnError func(error)

	w   *JSONLZstdWriter
	now func() time.Time
}

func NewNotificationLogger(worldDir string, next Notifier) *NotificationLogger {
	return &NotificationLogger{
		Next: next,
		w:    NewJSONLZstdWriter(filepath.Join(worldDir, "notifications"), "notifications"),
		now:  time.Now,
	}
}

func (l *NotificationLogger) Broadcast(n protocol.Notification) {
	l.record(NotificationEntry{Time: l.now().UTC(), Packet: n})
	if l.Next != nil {
		l.Next.Broadcast(n)
	}
}

func (l *NotificationLogger) Send(playerID string, n protocol.Notification) {
	l.record(NotificationEntry{Time: l.now().UTC(), PlayerID: playerID, Packet: n})
	if l.Next != nil {
		l.Next.Send(playerID, n)
	}
}

func (l *NotificationLogger) record(e NotificationEntry) {
	if err := l.w.Write(e); err != nil && l.OnError != nil {
		l.OnError(err)
	}
}

func (l *NotificationLogger) Close() error { return l.w.Close() }
