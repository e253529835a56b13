package ledger

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

func TestPostgresStore_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	opened := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	closed := opened.Add(2 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"signal_id", "ticker", "action", "entry_price", "exit_price",
		"stop_loss", "take_profit", "opened_at", "closed_at", "status",
		"pnl_percent", "holding_minutes", "confidence_at_entry", "exit_reason",
	}).
		AddRow("a1b2c3d4", "GC=F", "STRONG_BUY", "2000", nil,
			"1997.5", "2063.33", opened, nil, "OPEN",
			nil, nil, 0.86, nil).
		AddRow("e5f6a7b8", "SI=F", "SELL", "24.8", "22.32",
			"25.5", "22.3", opened, closed, "CLOSED_WIN",
			"10.0", 120, 0.25, "TP")

	mock.ExpectQuery("SELECT (.+) FROM positions").WillReturnRows(rows)

	store := NewPostgresStoreFromDB(db)
	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)

	open := got[0]
	assert.Equal(t, models.ActionStrongBuy, open.Action)
	assert.Equal(t, models.StatusOpen, open.Status)
	assert.Nil(t, open.ExitPrice)
	assert.Nil(t, open.ClosedAt)
	require.NotNil(t, open.StopLoss)
	assert.True(t, open.StopLoss.Equal(decimal.NewFromFloat(1997.5)))

	done := got[1]
	assert.Equal(t, models.StatusClosedWin, done.Status)
	assert.Equal(t, models.ExitTakeProfit, done.ExitReason)
	require.NotNil(t, done.PnlPercent)
	assert.True(t, done.PnlPercent.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, done.HoldingMinutes)
	assert.Equal(t, 120, *done.HoldingMinutes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReplacesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	positions := samplePositions()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnResult(sqlmock.NewResult(0, 2))
	for range positions {
		mock.ExpectExec("INSERT INTO positions").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	store := NewPostgresStoreFromDB(db)
	require.NoError(t, store.Save(positions))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM positions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO positions").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	store := NewPostgresStoreFromDB(db)
	err = store.Save(samplePositions()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert position")
	assert.NoError(t, mock.ExpectationsWereMet())
}
