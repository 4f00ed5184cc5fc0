package internal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// History is the query log, newest entry first
type History struct {
	store *Store
	now   func() time.Time
}

// NewHistory creates a history log on store
func NewHistory(store *Store) *History {
	return &History{store: store, now: time.Now}
}

// List returns entries newest first
func (h *History) List() ([]HistoryEntry, error) {
	return loadList[HistoryEntry](h.store, KeyQueryHistory)
}

// Record prepends an entry for sql
func (h *History) Record(sql, status, errMsg string) (*HistoryEntry, error) {
	entries, err := h.List()
	if err != nil {
		return nil, err
	}
	entry := HistoryEntry{
		ID:        uuid.NewString(),
		SQL:       sql,
		Timestamp: h.now(),
		Status:    status,
		Error:     errMsg,
	}
	entries = append([]HistoryEntry{entry}, entries...)
	if err := h.store.SetJSON(KeyQueryHistory, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Trim deletes the n oldest entries and returns how many were removed
func (h *History) Trim(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("delete count must be at least 1, got %d", n)
	}
	entries, err := h.List()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	keep := len(entries) - n
	if keep < 0 {
		keep = 0
	}
	if err := h.store.SetJSON(KeyQueryHistory, entries[:keep]); err != nil {
		return 0, err
	}
	return len(entries) - keep, nil
}

// Clear removes every entry
func (h *History) Clear() error {
	return h.store.Delete(KeyQueryHistory)
}
