package neointrospect

import "context"

// Session is a read-scoped handle over a graph database.
// Sessions are short-lived: open one, run a few queries, close it.
type Session interface {
	// Run executes a read query and returns its rows keyed by column name.
	Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// Close releases the session back to the driver.
	Close(ctx context.Context) error
}

// SessionFactory mints fresh read-scoped sessions on demand.
// Introspection may open several sessions, possibly concurrently, so
// implementations must be safe for concurrent use.
type SessionFactory interface {
	ReadSession(ctx context.Context) (Session, error)
}

// SessionFactoryFunc adapts a function to a SessionFactory.
type SessionFactoryFunc func(ctx context.Context) (Session, error)

// ReadSession calls f.
func (f SessionFactoryFunc) ReadSession(ctx context.Context) (Session, error) {
	return f(ctx)
}

// InferenceOptions controls schema inference.
type InferenceOptions struct {
	// AlwaysIncludeRelationships keeps relationships even when one of their
	// endpoint node types has no representable properties.
	AlwaysIncludeRelationships bool `yaml:"always_include_relationships"`
}
