package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quakecraft.ai/internal/persistence/kvstore"
)

const userTuning = `enable_scheduled_events: true
tick_seconds: 1
foreshock_interval_seconds: 1
shard_lowering_enabled: false
user_schedule:
  - {month: 5, day: 12, hour: 14, magnitudes: [6, 8]}
  - {month: 3, day: 2, hour: 9, magnitudes: [3]}
`

func setupDirs(t *testing.T, tuningYAML string) (dataDir, configDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	configDir = filepath.Join(root, "configs")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	if tuningYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "tuning.yaml"), []byte(tuningYAML), 0o644))
	}
	return dataDir, configDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "showdates", "gendates", "test", "history"} {
		assert.Contains(t, out, sub, "help missing %q command", sub)
	}
}

func TestShowDates_UserSchedule(t *testing.T) {
	data, configs := setupDirs(t, userTuning)

	out, err := run(t, "showdates", "--data", data, "--configs", configs, "--start-year", "7")
	require.NoError(t, err)
	assert.Equal(t,
		"Scheduled earthquakes for year 7: Month 3, Day 2 @ 09:00 - Magnitudes: 3; Month 5, Day 12 @ 14:00 - Magnitudes: 6, 8\n",
		out)
}

func TestShowDates_CreatesDefaultTuning(t *testing.T) {
	data, configs := setupDirs(t, "")

	out, err := run(t, "showdates", "--data", data, "--configs", configs)
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled earthquakes for year 1: ")
	assert.FileExists(t, filepath.Join(configs, "tuning.yaml"))
}

func TestGenDates_PersistsSchedule(t *testing.T) {
	data, configs := setupDirs(t, "")
	args := []string{"--data", data, "--configs", configs, "--start-year", "3"}

	out, err := run(t, append([]string{"gendates"}, args...)...)
	require.NoError(t, err)
	assert.Equal(t, "Earthquake schedule regenerated for year 3\n", out)

	first, err := run(t, append([]string{"showdates"}, args...)...)
	require.NoError(t, err)
	second, err := run(t, append([]string{"showdates"}, args...)...)
	require.NoError(t, err)
	assert.Equal(t, first, second, "schedule must be read back, not regenerated")
}

func TestTestQuake_RunsAndRecords(t *testing.T) {
	data, configs := setupDirs(t, userTuning)
	args := []string{"--data", data, "--configs", configs, "--height", "200"}

	out, err := run(t, append([]string{"test", "2"}, args...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "[broadcast] Seismologists warn of a magnitude 2 earthquake later today.")
	assert.Contains(t, out, "Triggered magnitude 2 earthquake.")
	assert.Contains(t, out, `"magnitude": 2`)
	assert.NotContains(t, out, "have ended", "test quakes do not broadcast completion")

	hist, err := run(t, append([]string{"history", "--json"}, args...)...)
	require.NoError(t, err)
	var rows []kvstore.QuakeRecord
	require.NoError(t, json.Unmarshal([]byte(hist), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Magnitude)
	assert.False(t, rows[0].Report.Broadcast)
}

func TestTestQuake_BadMagnitude(t *testing.T) {
	data, configs := setupDirs(t, userTuning)

	_, err := run(t, "test", "big", "--data", data, "--configs", configs)
	require.Error(t, err)
	assert.Equal(t, "Usage: /earthquake test <1-9>", err.Error())
}

func TestHistory_Empty(t *testing.T) {
	data, configs := setupDirs(t, "")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "worlds", "world_1"), 0o755))

	out, err := run(t, "history", "--data", data, "--configs", configs)
	require.NoError(t, err)
	assert.Equal(t, "No earthquakes recorded.\n", out)
}

func TestIsLoopbackRemote(t *testing.T) {
	assert.True(t, isLoopbackRemote("127.0.0.1:5555"))
	assert.True(t, isLoopbackRemote("[::1]:80"))
	assert.False(t, isLoopbackRemote("10.0.0.2:80"))
	assert.False(t, isLoopbackRemote("nonsense"))
}
