package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dashboard holds pinned widgets
type Dashboard struct {
	store *Store
	now   func() time.Time
}

// NewDashboard creates a dashboard on store
func NewDashboard(store *Store) *Dashboard {
	return &Dashboard{store: store, now: time.Now}
}

// Widgets returns every pinned widget regardless of connection
func (d *Dashboard) Widgets() ([]Widget, error) {
	return loadList[Widget](d.store, KeyPinnedWidgets)
}

func (d *Dashboard) save(widgets []Widget) error {
	return d.store.SetJSON(KeyPinnedWidgets, widgets)
}

// Pin stores a widget for sql. The connection the query ran against is kept
// so the widget refreshes against the same database later.
func (d *Dashboard) Pin(sql, chartType string, config ChartConfig, connectionURI string, data []Row) (*Widget, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("cannot pin a widget without SQL")
	}
	if chartType == "" {
		chartType = DatasetTable
	}
	widgets, err := d.Widgets()
	if err != nil {
		return nil, err
	}
	widget := Widget{
		ID:            uuid.NewString(),
		SQL:           sql,
		ChartType:     chartType,
		ChartConfig:   config,
		ConnectionURI: connectionURI,
		Timestamp:     d.now(),
		Data:          data,
	}
	widgets = append(widgets, widget)
	if err := d.save(widgets); err != nil {
		return nil, err
	}
	return &widget, nil
}

// Get finds a widget by id or unique prefix
func (d *Dashboard) Get(idOrPrefix string) (*Widget, error) {
	widgets, err := d.Widgets()
	if err != nil {
		return nil, err
	}
	idx, err := findByID(len(widgets), func(i int) string { return widgets[i].ID }, idOrPrefix, "widget")
	if err != nil {
		return nil, err
	}
	return &widgets[idx], nil
}

// Remove deletes a widget
func (d *Dashboard) Remove(idOrPrefix string) error {
	widgets, err := d.Widgets()
	if err != nil {
		return err
	}
	idx, err := findByID(len(widgets), func(i int) string { return widgets[i].ID }, idOrPrefix, "widget")
	if err != nil {
		return err
	}
	widgets = append(widgets[:idx], widgets[idx+1:]...)
	return d.save(widgets)
}

// ForConnection returns widgets pinned against uri. No connection and an
// empty connection are the same (the internal sandbox).
func (d *Dashboard) ForConnection(uri string) ([]Widget, error) {
	widgets, err := d.Widgets()
	if err != nil {
		return nil, err
	}
	filtered := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if w.ConnectionURI == uri {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// UpdateData replaces a widget's cached rows
func (d *Dashboard) UpdateData(id string, data []Row) error {
	widgets, err := d.Widgets()
	if err != nil {
		return err
	}
	for i := range widgets {
		if widgets[i].ID == id {
			now := d.now()
			widgets[i].Data = data
			widgets[i].LastUpdated = &now
			return d.save(widgets)
		}
	}
	return fmt.Errorf("widget %q: %w", id, ErrNotFound)
}

// Clear removes every widget
func (d *Dashboard) Clear() error {
	return d.store.Delete(KeyPinnedWidgets)
}

// findByID resolves an exact id or a unique prefix among n items
func findByID(n int, idAt func(int) string, idOrPrefix, kind string) (int, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return -1, fmt.Errorf("%s id is required", kind)
	}
	match := -1
	for i := 0; i < n; i++ {
		id := idAt(i)
		if id == idOrPrefix {
			return i, nil
		}
		if strings.HasPrefix(id, idOrPrefix) {
			if match >= 0 {
				return -1, fmt.Errorf("%s id %q is ambiguous", kind, idOrPrefix)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%s %q: %w", kind, idOrPrefix, ErrNotFound)
	}
	return match, nil
}
