package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSchemaTTL matches how long the backend itself caches introspection
const DefaultSchemaTTL = 5 * time.Minute

const schemaCacheVersion = "1.0"

// CacheManager caches schema listings per connection in a YAML file
type CacheManager struct {
	cacheDir string
	ttl      time.Duration
	now      func() time.Time
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// SchemaEntry is the cached schema of one connection. Table listings and
// column details are fetched separately, so each carries its own timestamp.
type SchemaEntry struct {
	Tables          []string            `yaml:"tables"`
	TablesFetchedAt time.Time           `yaml:"tables_fetched_at,omitempty"`
	Columns         map[string][]Column `yaml:"columns,omitempty"`
	FetchedAt       time.Time           `yaml:"fetched_at"`
}

// SchemaIndex is the YAML document on disk
type SchemaIndex struct {
	Connections map[string]*SchemaEntry `yaml:"connections"`
	Metadata    CacheMetadata           `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultSchemaTTL
	}
	return &CacheManager{
		cacheDir: cacheDir,
		ttl:      ttl,
		now:      time.Now,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0700)
}

// GetIndexPath returns the path to the schema cache YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "schema-cache.yaml")
}

// LoadIndex loads the cache file. A missing file is an empty index.
func (cm *CacheManager) LoadIndex() (*SchemaIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if os.IsNotExist(err) {
		return cm.emptyIndex(), nil
	}
	if err != nil {
		return nil, err
	}

	var index SchemaIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema cache: %w", err)
	}
	if index.Connections == nil {
		index.Connections = map[string]*SchemaEntry{}
	}
	return &index, nil
}

// SaveIndex writes the cache file
func (cm *CacheManager) SaveIndex(index *SchemaIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}
	index.Metadata.UpdatedAt = cm.now()
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal schema cache: %w", err)
	}
	path := cm.GetIndexPath()
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of a file that already exists
	return os.Chmod(path, 0600)
}

func (cm *CacheManager) emptyIndex() *SchemaIndex {
	now := cm.now()
	return &SchemaIndex{
		Connections: map[string]*SchemaEntry{},
		Metadata: CacheMetadata{
			CacheVersion: schemaCacheVersion,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func (cm *CacheManager) fresh(entry *SchemaEntry) bool {
	return entry != nil && cm.now().Sub(entry.FetchedAt) < cm.ttl
}

// Tables returns cached table names for key if they are still fresh
func (cm *CacheManager) Tables(key string) ([]string, bool) {
	index, err := cm.LoadIndex()
	if err != nil {
		LogWarn("Failed to load schema cache: %v", err)
		return nil, false
	}
	entry := index.Connections[key]
	if entry == nil || entry.TablesFetchedAt.IsZero() || cm.now().Sub(entry.TablesFetchedAt) >= cm.ttl {
		return nil, false
	}
	return entry.Tables, true
}

// Columns returns cached columns of table for key if they are still fresh
func (cm *CacheManager) Columns(key, table string) ([]Column, bool) {
	index, err := cm.LoadIndex()
	if err != nil {
		LogWarn("Failed to load schema cache: %v", err)
		return nil, false
	}
	entry := index.Connections[key]
	if !cm.fresh(entry) || entry.Columns == nil {
		return nil, false
	}
	cols, ok := entry.Columns[table]
	return cols, ok
}

// SaveTables stores a table listing, dropping cached columns of that connection
func (cm *CacheManager) SaveTables(key string, tables []string) error {
	index, err := cm.LoadIndex()
	if err != nil {
		index = cm.emptyIndex()
	}
	now := cm.now()
	index.Connections[key] = &SchemaEntry{
		Tables:          tables,
		TablesFetchedAt: now,
		Columns:         map[string][]Column{},
		FetchedAt:       now,
	}
	return cm.SaveIndex(index)
}

// SaveColumns stores the columns of one table
func (cm *CacheManager) SaveColumns(key, table string, columns []Column) error {
	index, err := cm.LoadIndex()
	if err != nil {
		index = cm.emptyIndex()
	}
	entry := index.Connections[key]
	if !cm.fresh(entry) {
		entry = &SchemaEntry{FetchedAt: cm.now()}
		index.Connections[key] = entry
	}
	if entry.Columns == nil {
		entry.Columns = map[string][]Column{}
	}
	entry.Columns[table] = columns
	return cm.SaveIndex(index)
}

// Invalidate forgets the cached schema of one connection
func (cm *CacheManager) Invalidate(key string) error {
	index, err := cm.LoadIndex()
	if err != nil {
		return cm.ClearCache()
	}
	if _, ok := index.Connections[key]; !ok {
		return nil
	}
	delete(index.Connections, key)
	return cm.SaveIndex(index)
}

// ClearCache removes the cache file
func (cm *CacheManager) ClearCache() error {
	if err := os.Remove(cm.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
