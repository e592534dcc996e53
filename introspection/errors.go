package introspection

import "errors"

// Sentinel errors for the introspection package.
var (
	// ErrNoSessionFactory is returned when no session factory is configured.
	ErrNoSessionFactory = errors.New("introspection: no session factory")

	// ErrSession is returned when a read session cannot be opened.
	ErrSession = errors.New("introspection: failed to open session")

	// ErrQuery is returned when a schema query fails.
	ErrQuery = errors.New("introspection: query failed")
)
