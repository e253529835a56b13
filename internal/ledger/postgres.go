package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

// PostgresStore persists the ledger in a positions table. Saves replace the
// full record set in one transaction, matching the file store's semantics.
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore opens a Postgres-backed ledger store.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{conn: conn}, nil
}

// NewPostgresStoreFromDB wraps an existing connection, used by tests.
func NewPostgresStoreFromDB(conn *sql.DB) *PostgresStore {
	return &PostgresStore{conn: conn}
}

const positionColumns = `signal_id, ticker, action, entry_price, exit_price,
		       stop_loss, take_profit, opened_at, closed_at, status,
		       pnl_percent, holding_minutes, confidence_at_entry, exit_reason`

// Load reads the full ledger ordered by open time.
func (s *PostgresStore) Load() ([]*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		ORDER BY opened_at ASC
	`
	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

// Save atomically replaces all persisted positions with the given set.
func (s *PostgresStore) Save(positions []*models.Position) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	insertQuery := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	for _, p := range positions {
		_, err := tx.Exec(insertQuery,
			p.SignalID, p.Ticker, string(p.Action), p.EntryPrice,
			nullDecimal(p.ExitPrice), nullDecimal(p.StopLoss), nullDecimal(p.TakeProfit),
			p.OpenedAt, nullTime(p.ClosedAt), string(p.Status),
			nullDecimal(p.PnlPercent), nullInt(p.HoldingMinutes),
			p.ConfidenceAtEntry, nullReason(p.ExitReason),
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.SignalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.conn.Close()
}

func scanPosition(rows *sql.Rows) (*models.Position, error) {
	var p models.Position
	var action, status string
	var exitPrice, stopLoss, takeProfit, pnlPercent sql.NullString
	var closedAt sql.NullTime
	var holdingMinutes sql.NullInt64
	var exitReason sql.NullString

	err := rows.Scan(
		&p.SignalID, &p.Ticker, &action, &p.EntryPrice, &exitPrice,
		&stopLoss, &takeProfit, &p.OpenedAt, &closedAt, &status,
		&pnlPercent, &holdingMinutes, &p.ConfidenceAtEntry, &exitReason,
	)
	if err != nil {
		return nil, err
	}

	p.Action = models.Action(action)
	p.Status = models.Status(status)
	p.ExitPrice = parseDecimal(exitPrice)
	p.StopLoss = parseDecimal(stopLoss)
	p.TakeProfit = parseDecimal(takeProfit)
	p.PnlPercent = parseDecimal(pnlPercent)
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	if holdingMinutes.Valid {
		m := int(holdingMinutes.Int64)
		p.HoldingMinutes = &m
	}
	if exitReason.Valid {
		p.ExitReason = models.ExitReason(exitReason.String)
	}
	return &p, nil
}

func parseDecimal(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return int64(*i)
}

func nullReason(r models.ExitReason) interface{} {
	if r == "" {
		return nil
	}
	return string(r)
}
