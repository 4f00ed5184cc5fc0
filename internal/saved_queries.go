package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SavedQueries is the bookmark list of the SQL editor
type SavedQueries struct {
	store *Store
	now   func() time.Time
}

// NewSavedQueries creates the bookmark list on store
func NewSavedQueries(store *Store) *SavedQueries {
	return &SavedQueries{store: store, now: time.Now}
}

// List returns saved queries, newest first
func (q *SavedQueries) List() ([]SavedQuery, error) {
	return loadList[SavedQuery](q.store, KeySavedQueries)
}

// Save bookmarks sql under name
func (q *SavedQueries) Save(name, sql string) (*SavedQuery, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("cannot save an empty query")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("query name cannot be empty")
	}
	queries, err := q.List()
	if err != nil {
		return nil, err
	}
	saved := SavedQuery{
		ID:        uuid.NewString(),
		Name:      name,
		SQL:       sql,
		CreatedAt: q.now(),
	}
	queries = append([]SavedQuery{saved}, queries...)
	if err := q.store.SetJSON(KeySavedQueries, queries); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Get finds a saved query by id, unique id prefix or exact name
func (q *SavedQueries) Get(ref string) (*SavedQuery, error) {
	queries, err := q.List()
	if err != nil {
		return nil, err
	}
	for i := range queries {
		if queries[i].Name == ref {
			return &queries[i], nil
		}
	}
	idx, err := findByID(len(queries), func(i int) string { return queries[i].ID }, ref, "saved query")
	if err != nil {
		return nil, err
	}
	return &queries[idx], nil
}

// Delete removes a saved query by id or unique id prefix
func (q *SavedQueries) Delete(idOrPrefix string) error {
	queries, err := q.List()
	if err != nil {
		return err
	}
	idx, err := findByID(len(queries), func(i int) string { return queries[i].ID }, idOrPrefix, "saved query")
	if err != nil {
		return err
	}
	queries = append(queries[:idx], queries[idx+1:]...)
	return q.store.SetJSON(KeySavedQueries, queries)
}

// Search returns queries whose name or SQL contains term, case-insensitively
func (q *SavedQueries) Search(term string) ([]SavedQuery, error) {
	queries, err := q.List()
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	if term == "" {
		return queries, nil
	}
	matches := make([]SavedQuery, 0, len(queries))
	for _, sq := range queries {
		if strings.Contains(strings.ToLower(sq.Name), term) || strings.Contains(strings.ToLower(sq.SQL), term) {
			matches = append(matches, sq)
		}
	}
	return matches, nil
}
