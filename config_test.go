package neointrospect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeo4jConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Neo4jConfig
		wantErr error
	}{
		{
			name: "valid bolt",
			cfg:  Neo4jConfig{URI: "bolt://localhost:7687", Username: "neo4j", Password: "x"},
		},
		{
			name: "valid neo4j+s with log level",
			cfg:  Neo4jConfig{URI: "neo4j+s://db.example.com", Username: "neo4j", Password: "x", LogLevel: LogLevelDebug},
		},
		{
			name:    "http scheme",
			cfg:     Neo4jConfig{URI: "http://localhost:7474", Username: "neo4j", Password: "x"},
			wantErr: ErrInvalidURI,
		},
		{
			name:    "missing host",
			cfg:     Neo4jConfig{URI: "bolt://", Username: "neo4j", Password: "x"},
			wantErr: ErrInvalidURI,
		},
		{
			name:    "unparseable",
			cfg:     Neo4jConfig{URI: "bolt://local host:%zz", Username: "neo4j", Password: "x"},
			wantErr: ErrInvalidURI,
		},
		{
			name:    "empty password",
			cfg:     Neo4jConfig{URI: "bolt://localhost:7687", Username: "neo4j"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "empty username",
			cfg:     Neo4jConfig{URI: "bolt://localhost:7687", Password: "x"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "bad log level",
			cfg:     Neo4jConfig{URI: "bolt://localhost:7687", Username: "neo4j", Password: "x", LogLevel: "trace"},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNeo4jConfig_TargetURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uri       string
		encrypted bool
		want      string
	}{
		{"bolt://localhost:7687", false, "bolt://localhost:7687"},
		{"bolt://localhost:7687", true, "bolt+s://localhost:7687"},
		{"neo4j://cluster:7687", true, "neo4j+s://cluster:7687"},
		{"neo4j+ssc://cluster:7687", true, "neo4j+ssc://cluster:7687"},
		{"bolt+s://secure:7687", false, "bolt+s://secure:7687"},
	}

	for _, tt := range tests {
		cfg := Neo4jConfig{URI: tt.uri, Encrypted: tt.encrypted}
		assert.Equal(t, tt.want, cfg.TargetURI(), "uri=%s encrypted=%v", tt.uri, tt.encrypted)
	}
}

func TestLoadConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	configYAML := `
neo4j:
  uri: neo4j://graph:7687
  username: reader
  password: secret
  encrypted: true
  log_level: warn
inference:
  always_include_relationships: true
graph_output: graph.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".neointrospect.yaml"), []byte(configYAML), 0o644))

	cfg, err := LoadConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "reader", cfg.Neo4j.Username)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.True(t, cfg.Neo4j.Encrypted)
	assert.Equal(t, LogLevelWarn, cfg.Neo4j.LogLevel)
	assert.True(t, cfg.Inference.AlwaysIncludeRelationships)
	assert.Equal(t, "graph.yaml", cfg.GraphOutput)
	assert.Equal(t, DefaultOutputPath, cfg.Output, "output should keep its default")
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "neointrospect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neo4j: [unclosed"), 0o644))

	_, err := LoadConfigFile(path)
	require.Error(t, err)
}

func TestFindConfig_NotFound(t *testing.T) {
	t.Parallel()

	// Walking up from a fresh temp dir may still hit a config in a parent on
	// unusual machines; only assert the sentinel when nothing is found.
	_, err := FindConfig(t.TempDir())
	if err != nil {
		assert.ErrorIs(t, err, ErrConfigNotFound)
	}
}

func TestSessionFactoryFunc(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	f := SessionFactoryFunc(func(context.Context) (Session, error) {
		return nil, errBoom
	})

	_, err := f.ReadSession(t.Context())
	require.ErrorIs(t, err, errBoom)
}
