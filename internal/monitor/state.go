package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Stats are the monitor's run counters.
type Stats struct {
	StartedAt   *time.Time `json:"started_at"`
	ChecksCount int        `json:"checks_count"`
	AlertsSent  int        `json:"alerts_sent"`
	LastCheck   *time.Time `json:"last_check"`
}

// State is the monitor's persisted crash-recovery state: the last alerted
// action per ticker plus run counters.
type State struct {
	LastSignals map[string]models.Action `json:"last_signals"`
	Stats       Stats                    `json:"stats"`
	SavedAt     time.Time                `json:"saved_at"`
}

// LoadState reads the persisted monitor state. A missing or corrupt file is
// a recoverable condition: the monitor starts from a fresh empty state with a
// logged warning.
func LoadState(path string) *State {
	fresh := &State{LastSignals: make(map[string]models.Action)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fresh
	}
	if err != nil {
		log.Printf("Warning: could not read monitor state: %v (starting fresh)", err)
		return fresh
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Warning: corrupt monitor state at %s: %v (starting fresh)", path, err)
		return fresh
	}
	if s.LastSignals == nil {
		s.LastSignals = make(map[string]models.Action)
	}
	log.Printf("Monitor state loaded: %d tracked signals", len(s.LastSignals))
	return &s
}

// Save writes the state via atomic replace.
func (s *State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	s.SavedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal monitor state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write monitor state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace monitor state: %w", err)
	}
	return nil
}
