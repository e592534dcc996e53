// Package neo4j adapts the Neo4j Go driver to neointrospect.SessionFactory.
package neo4j

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.uber.org/zap"

	"github.com/rlch/neointrospect"
)

var (
	// ErrConnect is returned when the driver cannot be created or the server is unreachable.
	ErrConnect = errors.New("neo4j: failed to connect")

	// ErrNilConfig is returned when New is called without a configuration.
	ErrNilConfig = errors.New("neo4j: nil config")

	// ErrNotConnected is returned when sessions are requested from a nil or unconnected Client.
	ErrNotConnected = errors.New("neo4j: client not connected")
)

// Client owns a driver and mints read-scoped sessions from it.
// It implements neointrospect.SessionFactory and is safe for concurrent use.
type Client struct {
	driver neo4j.DriverWithContext
	db     string
	logger *zap.Logger
}

// New creates a driver from cfg and verifies connectivity.
// Driver logging is bridged to logger at cfg.LogLevel.
func New(ctx context.Context, cfg *neointrospect.Neo4jConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	target := cfg.TargetURI()
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")

	driver, err := neo4j.NewDriverWithContext(target, auth, func(c *config.Config) {
		if driverLog := newDriverLogger(logger, cfg.LogLevel); driverLog != nil {
			c.Log = driverLog
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating driver: %w", ErrConnect, err)
	}

	// Verify connectivity
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, target, err)
	}

	logger.Debug("Connected to Neo4j", zap.String("uri", target), zap.String("database", cfg.Database))

	return &Client{
		driver: driver,
		db:     cfg.Database,
		logger: logger,
	}, nil
}

// ReadSession opens a new read-only session.
func (c *Client) ReadSession(ctx context.Context) (neointrospect.Session, error) {
	if c == nil || c.driver == nil {
		return nil, ErrNotConnected
	}

	sessionCfg := neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeRead,
	}
	if c.db != "" {
		sessionCfg.DatabaseName = c.db
	}

	return &Session{session: c.driver.NewSession(ctx, sessionCfg)}, nil
}

// Close releases the driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("neo4j: failed to close driver: %w", err)
	}

	return nil
}

// Session wraps a driver session to implement neointrospect.Session.
type Session struct {
	session neo4j.SessionWithContext
}

// Run executes a Cypher query and returns its rows.
func (s *Session) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := s.session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query execution failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to collect results: %w", err)
	}

	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = recordToRow(record.Keys, record.Values)
	}

	return rows, nil
}

// Close closes the session.
func (s *Session) Close(ctx context.Context) error {
	if err := s.session.Close(ctx); err != nil {
		return fmt.Errorf("neo4j: failed to close session: %w", err)
	}

	return nil
}

// recordToRow zips record keys and values into a row.
func recordToRow(keys []string, values []any) map[string]any {
	row := make(map[string]any, len(keys))

	for i, key := range keys {
		if i < len(values) {
			row[key] = values[i]
		}
	}

	return row
}

// Compile-time interface checks.
var (
	_ neointrospect.SessionFactory = (*Client)(nil)
	_ neointrospect.Session        = (*Session)(nil)
)
