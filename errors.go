package neointrospect

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .neointrospect.yaml is found.
	ErrConfigNotFound = errors.New("neointrospect: no .neointrospect.yaml found")

	// ErrInvalidURI is returned when the connection URI cannot be used by the driver.
	ErrInvalidURI = errors.New("neointrospect: invalid connection URI")

	// ErrMissingCredentials is returned when the username or password is empty.
	ErrMissingCredentials = errors.New("neointrospect: username and password are required")

	// ErrInvalidLogLevel is returned for an unrecognised driver log level.
	ErrInvalidLogLevel = errors.New("neointrospect: invalid log level")
)
