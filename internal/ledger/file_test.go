package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

func samplePositions() []*models.Position {
	stop := decimal.NewFromFloat(1997.5)
	target := decimal.NewFromFloat(2063.33)
	exit := decimal.NewFromFloat(2063.33)
	pnl := decimal.NewFromFloat(3.17)
	minutes := 95
	opened := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	closed := opened.Add(95 * time.Minute)

	return []*models.Position{
		{
			SignalID:          "a1b2c3d4",
			Ticker:            "GC=F",
			Action:            models.ActionStrongBuy,
			EntryPrice:        decimal.NewFromFloat(2000),
			StopLoss:          &stop,
			TakeProfit:        &target,
			OpenedAt:          opened,
			Status:            models.StatusOpen,
			ConfidenceAtEntry: 0.86,
		},
		{
			SignalID:          "e5f6a7b8",
			Ticker:            "SI=F",
			Action:            models.ActionSell,
			EntryPrice:        decimal.NewFromFloat(24.8),
			ExitPrice:         &exit,
			OpenedAt:          opened,
			ClosedAt:          &closed,
			Status:            models.StatusClosedWin,
			PnlPercent:        &pnl,
			HoldingMinutes:    &minutes,
			ConfidenceAtEntry: 0.25,
			ExitReason:        models.ExitTakeProfit,
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "positions.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	want := samplePositions()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range want {
		assert.Equal(t, want[i].SignalID, got[i].SignalID)
		assert.Equal(t, want[i].Ticker, got[i].Ticker)
		assert.Equal(t, want[i].Action, got[i].Action)
		assert.Equal(t, want[i].Status, got[i].Status)
		assert.True(t, want[i].EntryPrice.Equal(got[i].EntryPrice))
		assert.Equal(t, want[i].ConfidenceAtEntry, got[i].ConfidenceAtEntry)
		assert.Equal(t, want[i].ExitReason, got[i].ExitReason)
		assert.True(t, want[i].OpenedAt.Equal(got[i].OpenedAt))
	}

	// Nullable fields survive the trip in both directions.
	assert.Nil(t, got[0].ExitPrice)
	assert.Nil(t, got[0].ClosedAt)
	require.NotNil(t, got[0].StopLoss)
	assert.True(t, got[0].StopLoss.Equal(decimal.NewFromFloat(1997.5)))
	require.NotNil(t, got[1].PnlPercent)
	assert.True(t, got[1].PnlPercent.Equal(decimal.NewFromFloat(3.17)))
	require.NotNil(t, got[1].HoldingMinutes)
	assert.Equal(t, 95, *got[1].HoldingMinutes)
}

func TestFileStore_MissingFileIsEmptyLedger(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "positions.json"))
	require.NoError(t, err)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_CorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestFileStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(samplePositions()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "positions.json", entries[0].Name())
}

func TestFileStore_SaveOverwritesPrevious(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "positions.json"))
	require.NoError(t, err)

	require.NoError(t, store.Save(samplePositions()))
	require.NoError(t, store.Save(samplePositions()[:1]))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
