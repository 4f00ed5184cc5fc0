package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Setting bounds
const (
	DefaultFontSize = 14
	DefaultRowLimit = 100
	MinFontSize     = 8
	MaxFontSize     = 40
	MinRowLimit     = 1
	MaxRowLimit     = 10000
)

// Settings are the editor preferences
type Settings struct {
	FontSize int  `json:"fontSize" yaml:"font_size"`
	RowLimit int  `json:"rowLimit" yaml:"row_limit"`
	SafeMode bool `json:"safeMode" yaml:"safe_mode"`
}

// DefaultSettings returns the factory defaults
func DefaultSettings() Settings {
	return Settings{FontSize: DefaultFontSize, RowLimit: DefaultRowLimit}
}

// SettingKeys lists the names accepted by Set
var SettingKeys = []string{"font-size", "row-limit", "safe-mode"}

// Backup is the data export of the settings page
type Backup struct {
	Settings Settings       `json:"settings"`
	History  []HistoryEntry `json:"history"`
	Pinned   []Widget       `json:"pinned"`
	SQL      string         `json:"sql"`
}

// Preferences reads and writes Settings
type Preferences struct {
	store *Store
}

// NewPreferences creates a settings manager on store
func NewPreferences(store *Store) *Preferences {
	return &Preferences{store: store}
}

// Load returns stored settings with defaults filled in
func (p *Preferences) Load() Settings {
	s := DefaultSettings()
	err := p.store.GetJSON(KeySettings, &s)
	if err != nil && !errors.Is(err, ErrNotFound) {
		LogWarn("Using default settings: %v", err)
		return DefaultSettings()
	}
	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}
	if s.RowLimit <= 0 {
		s.RowLimit = DefaultRowLimit
	}
	return s
}

// Save stores settings
func (p *Preferences) Save(s Settings) error {
	return p.store.SetJSON(KeySettings, s)
}

// Set parses and stores one setting by name
func (p *Preferences) Set(key, value string) (Settings, error) {
	s := p.Load()
	value = strings.TrimSpace(value)
	switch strings.ReplaceAll(strings.ToLower(key), "_", "-") {
	case "font-size":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinFontSize || n > MaxFontSize {
			return s, fmt.Errorf("font-size must be an integer between %d and %d", MinFontSize, MaxFontSize)
		}
		s.FontSize = n
	case "row-limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinRowLimit || n > MaxRowLimit {
			return s, fmt.Errorf("row-limit must be an integer between %d and %d", MinRowLimit, MaxRowLimit)
		}
		s.RowLimit = n
	case "safe-mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("safe-mode must be true or false")
		}
		s.SafeMode = b
	default:
		return s, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(SettingKeys, ", "))
	}
	return s, p.Save(s)
}

// Reset restores defaults and wipes editor state, chat messages, the query
// log and pinned widgets. Sessions, saved queries, login and connection survive.
func (p *Preferences) Reset() error {
	if err := p.store.Delete(KeySettings, KeyEditorSQL, KeyEditorDatasets, KeyQueryHistory, KeyPinnedWidgets); err != nil {
		return err
	}
	return p.store.DeletePrefix(KeyChatMessagesPfx)
}

// Backup collects the exportable workbench data
func (p *Preferences) Backup() (*Backup, error) {
	history, err := loadList[HistoryEntry](p.store, KeyQueryHistory)
	if err != nil {
		return nil, err
	}
	pinned, err := loadList[Widget](p.store, KeyPinnedWidgets)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Settings: p.Load(),
		History:  history,
		Pinned:   pinned,
		SQL:      p.store.GetString(KeyEditorSQL, ""),
	}, nil
}
