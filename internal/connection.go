package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Supported external database types
const (
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
)

// ConnectionConfig describes an external database the backend should query
// instead of the user's sandbox schema.
type ConnectionConfig struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DefaultConnectionConfig is offered when nothing has been saved yet
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Type:     DBTypePostgres,
		Host:     "localhost",
		Port:     DefaultPort(DBTypePostgres),
		Database: "test",
		Username: "postgres",
	}
}

// DefaultPort returns the conventional port for a database type
func DefaultPort(dbType string) string {
	switch dbType {
	case DBTypeMySQL:
		return "3306"
	case DBTypePostgres:
		return "5432"
	}
	return ""
}

// URI renders the SQLAlchemy-style connection string the backend expects.
// Unknown types yield "".
func (c ConnectionConfig) URI() string {
	var scheme string
	switch c.Type {
	case DBTypePostgres:
		scheme = "postgresql"
	case DBTypeMySQL:
		scheme = "mysql+pymysql"
	default:
		return ""
	}
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s",
		scheme,
		encodeURIComponent(c.Username),
		encodeURIComponent(c.Password),
		c.Host,
		c.Port,
		encodeURIComponent(c.Database),
	)
}

// Validate checks that a URI can be built from the config
func (c ConnectionConfig) Validate() error {
	var problems []string
	if c.Type != DBTypePostgres && c.Type != DBTypeMySQL {
		problems = append(problems, fmt.Sprintf("unsupported type %q (supported: postgres, mysql)", c.Type))
	}
	if strings.TrimSpace(c.Host) == "" {
		problems = append(problems, "host is required")
	}
	if strings.TrimSpace(c.Port) == "" {
		problems = append(problems, "port is required")
	}
	if strings.TrimSpace(c.Database) == "" {
		problems = append(problems, "database is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid connection: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MaskURI hides the password of a connection URI for display
func MaskURI(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "(unparseable connection uri)"
	}
	return u.Redacted()
}

// encodeURIComponent escapes like the browser function of the same name,
// spaces become %20 rather than '+'.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Connections tracks the active external database
type Connections struct {
	store *Store
}

// NewConnections creates a connection manager on store
func NewConnections(store *Store) *Connections {
	return &Connections{store: store}
}

// ActiveURI returns the connected URI, "" when using the internal sandbox
func (c *Connections) ActiveURI() string {
	return c.store.GetString(KeyConnectionURI, "")
}

// Config returns the last saved connection form, or the defaults
func (c *Connections) Config() (ConnectionConfig, error) {
	cfg := DefaultConnectionConfig()
	err := c.store.GetJSON(KeyConnectionConfig, &cfg)
	if errors.Is(err, ErrNotFound) {
		return DefaultConnectionConfig(), nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		LogWarn("Ignoring unreadable connection config: %v", err)
		return DefaultConnectionConfig(), nil
	}
	return cfg, err
}

// Connect stores cfg and makes its URI active
func (c *Connections) Connect(cfg ConnectionConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	uri := cfg.URI()
	if err := c.store.Set(KeyConnectionURI, uri); err != nil {
		return "", err
	}
	if err := c.store.SetJSON(KeyConnectionConfig, cfg); err != nil {
		return "", err
	}
	LogInfo("Connected to %s", MaskURI(uri))
	return uri, nil
}

// Disconnect returns to the internal sandbox. The saved form is kept.
func (c *Connections) Disconnect() error {
	return c.store.Delete(KeyConnectionURI)
}
