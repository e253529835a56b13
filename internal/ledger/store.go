package ledger

import (
	"errors"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// ErrNotFound is returned when a signal id does not resolve to an open position.
var ErrNotFound = errors.New("position not found")

// Store persists the full position ledger. Implementations replace the whole
// record set on every save; the tracker owns all in-memory mutation.
type Store interface {
	// Load reads the complete ledger. A missing backing store yields an
	// empty slice, not an error.
	Load() ([]*models.Position, error)
	// Save atomically replaces the persisted ledger with the given set.
	Save(positions []*models.Position) error
	Close() error
}
