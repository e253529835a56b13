package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

func TestLoadState_MissingFileStartsFresh(t *testing.T) {
	s := LoadState(filepath.Join(t.TempDir(), "state.json"))
	require.NotNil(t, s)
	assert.Empty(t, s.LastSignals)
	assert.Zero(t, s.Stats.ChecksCount)
}

func TestLoadState_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := LoadState(path)
	require.NotNil(t, s)
	assert.Empty(t, s.LastSignals)
}

func TestState_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.json")
	started := time.Now().Add(-time.Hour).Truncate(time.Second)

	s := &State{
		LastSignals: map[string]models.Action{
			"GC=F": models.ActionStrongBuy,
			"SI=F": models.ActionSell,
		},
		Stats: Stats{StartedAt: &started, ChecksCount: 42, AlertsSent: 3},
	}
	require.NoError(t, s.Save(path))

	loaded := LoadState(path)
	assert.Equal(t, s.LastSignals, loaded.LastSignals)
	assert.Equal(t, 42, loaded.Stats.ChecksCount)
	assert.Equal(t, 3, loaded.Stats.AlertsSent)
	require.NotNil(t, loaded.Stats.StartedAt)
	assert.True(t, loaded.Stats.StartedAt.Equal(started))
	assert.False(t, loaded.SavedAt.IsZero())
}

func TestState_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	s := &State{LastSignals: map[string]models.Action{"GC=F": models.ActionBuy}}
	require.NoError(t, s.Save(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestPIDFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.pid")

	pid, err := ReadPIDFile(path)
	require.NoError(t, err)
	assert.Zero(t, pid, "missing file reads as no process")

	require.NoError(t, WritePIDFile(path))
	pid, err = ReadPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, ProcessAlive(pid))

	require.NoError(t, RemovePIDFile(path))
	pid, err = ReadPIDFile(path)
	require.NoError(t, err)
	assert.Zero(t, pid)
}
