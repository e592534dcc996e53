package neointrospect

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultURI        = "bolt://localhost:7687"
	DefaultUsername   = "neo4j"
	DefaultOutputPath = "schema_generated.graphql"
	DefaultLogLevel   = LogLevelOff
)

// Driver log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelOff   = "off"
)

// Schemes accepted by the Neo4j driver.
var validSchemes = []string{"bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc"}

// Config represents the .neointrospect.yaml configuration file.
type Config struct {
	Neo4j     Neo4jConfig      `yaml:"neo4j"`
	Inference InferenceOptions `yaml:"inference,omitempty"`

	// Output is where the generated type definitions are written.
	Output string `yaml:"output,omitempty"`

	// GraphOutput, when set, also persists the introspected graph as YAML.
	GraphOutput string `yaml:"graph_output,omitempty"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`

	// Encrypted upgrades plain bolt:// and neo4j:// URIs to their TLS variants.
	Encrypted bool `yaml:"encrypted,omitempty"`

	// LogLevel is the verbosity of the driver's own logging.
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      DefaultURI,
			Username: DefaultUsername,
			LogLevel: DefaultLogLevel,
		},
		Output: DefaultOutputPath,
	}
}

// Validate checks that the connection settings are usable.
func (c *Neo4jConfig) Validate() error {
	u, err := url.Parse(c.URI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	if !slices.Contains(validSchemes, u.Scheme) {
		return fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidURI, u.Scheme, c.URI)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidURI, c.URI)
	}

	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}

	switch c.LogLevel {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelOff:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// TargetURI returns the URI the driver should dial, with the scheme upgraded
// to TLS when Encrypted is set.
func (c *Neo4jConfig) TargetURI() string {
	if !c.Encrypted {
		return c.URI
	}

	scheme, rest, ok := strings.Cut(c.URI, "://")
	if !ok {
		return c.URI
	}

	switch scheme {
	case "bolt", "neo4j":
		return scheme + "+s://" + rest
	default:
		return c.URI
	}
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".neointrospect.yaml", ".neointrospect.yml", "neointrospect.yaml", "neointrospect.yml"}

// LoadConfig finds and loads the nearest .neointrospect.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path. Fields the file leaves
// out keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}
