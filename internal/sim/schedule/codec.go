package schedule

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const codecVersion = 1

type header struct {
	Version int `json:"version"`
	Year    int `json:"year"`
	Events  int `json:"events"`
}

// Encode serializes a schedule as a zstd stream holding a JSON header line
// followed by the gob-encoded schedule.
func Encode(s *Schedule) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil schedule")
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(enc)

	hb, _ := json.Marshal(header{Version: codecVersion, Year: s.Year, Events: len(s.Events)})
	if _, err := bw.Write(hb); err != nil {
		return nil, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(bw).Encode(s); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (*Schedule, error) {
	dec, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if h.Version != codecVersion {
		return nil, fmt.Errorf("unsupported schedule version %d", h.Version)
	}
	var s Schedule
	if err := gob.NewDecoder(br).Decode(&s); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return &s, nil
}
