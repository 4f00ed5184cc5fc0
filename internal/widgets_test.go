package internal

import (
	"errors"
	"testing"
)

func TestDashboard_Pin(t *testing.T) {
	d := NewDashboard(newTestStore(t))

	if _, err := d.Pin("  ", "bar", ChartConfig{}, "", nil); err == nil {
		t.Error("Pin() accepted empty SQL")
	}

	w, err := d.Pin("SELECT 1", "", ChartConfig{}, "", nil)
	if err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	if w.ChartType != DatasetTable {
		t.Errorf("ChartType = %q, want table", w.ChartType)
	}

	second, _ := d.Pin("SELECT 2", "bar", ChartConfig{XAxis: "name", YAxis: "n"}, "postgresql://u:p@h:5432/db", []Row{NewRow("name", "a", "n", 1)})
	widgets, _ := d.Widgets()
	if len(widgets) != 2 || widgets[0].ID != w.ID || widgets[1].ID != second.ID {
		t.Fatalf("widgets not kept in insertion order: %+v", widgets)
	}
	if widgets[1].ChartConfig.XAxis != "name" || len(widgets[1].Data) != 1 {
		t.Errorf("stored widget = %+v", widgets[1])
	}
}

func TestDashboard_ForConnection(t *testing.T) {
	store := newTestStore(t)
	d := NewDashboard(store)

	// a widget stored without the connectionUri field belongs to the sandbox
	_ = store.Set(KeyPinnedWidgets, `[{"id":"legacy","sql":"SELECT 0","chartType":"table"}]`)
	_, _ = d.Pin("SELECT 1", "table", ChartConfig{}, "", nil)
	_, _ = d.Pin("SELECT 2", "table", ChartConfig{}, "mysql+pymysql://u:p@h:3306/db", nil)

	tests := []struct {
		name string
		uri  string
		want int
	}{
		{name: "sandbox includes missing uri", uri: "", want: 2},
		{name: "external", uri: "mysql+pymysql://u:p@h:3306/db", want: 1},
		{name: "other", uri: "postgresql://x", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ForConnection(tt.uri)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("ForConnection(%q) = %d widgets, want %d", tt.uri, len(got), tt.want)
			}
		})
	}
}

func TestDashboard_UpdateRemoveClear(t *testing.T) {
	d := NewDashboard(newTestStore(t))
	w, _ := d.Pin("SELECT 1", "table", ChartConfig{}, "", nil)

	if err := d.UpdateData(w.ID, []Row{NewRow("x", 1)}); err != nil {
		t.Fatalf("UpdateData() error = %v", err)
	}
	got, _ := d.Get(w.ID[:6])
	if got.LastUpdated == nil || len(got.Data) != 1 {
		t.Errorf("UpdateData() not persisted: %+v", got)
	}
	if err := d.UpdateData("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateData(missing) error = %v", err)
	}

	if err := d.Remove(w.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := d.Get(w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove error = %v", err)
	}

	_, _ = d.Pin("SELECT 2", "table", ChartConfig{}, "", nil)
	if err := d.Clear(); err != nil {
		t.Fatal(err)
	}
	if widgets, _ := d.Widgets(); len(widgets) != 0 {
		t.Errorf("Clear() left %d widgets", len(widgets))
	}
}
