package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/neointrospect"
	"github.com/rlch/neointrospect/internal/neotest"
)

// clearEnv unsets the NEO4J_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE", "NEO4J_ENCRYPTED", "NEO4J_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

type fakeSource struct {
	*neotest.Factory
	closed bool
}

func (f *fakeSource) Close(context.Context) error {
	f.closed = true

	return nil
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ".neointrospect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestRun_WritesSchema(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := writeConfig(t, dir, "neo4j:\n  uri: bolt://config-host:7687\n")
	outputPath := filepath.Join(dir, "schema_generated.graphql")

	source := &fakeSource{Factory: neotest.NewFactory().
		On("nodeTypeProperties",
			neotest.NodeRow([]string{"Foo"}, "id", []string{"String"}, true),
		).
		On("relTypeProperties"),
	}

	var stdout, stderr bytes.Buffer
	var gotCfg *neointrospect.Neo4jConfig

	a := &app{
		stdout: &stdout,
		stderr: &stderr,
		connect: func(_ context.Context, cfg *neointrospect.Neo4jConfig, _ *zap.Logger) (sessionSource, error) {
			gotCfg = cfg

			return source, nil
		},
	}

	err := a.command().Run(t.Context(), []string{
		"neo4j-introspect",
		"--config", configPath,
		"--uri", "bolt://localhost:7687",
		"-u", "neo4j",
		"-p", "x",
		"-o", outputPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "type Foo {\n\tid: String!\n}\n", string(data))

	require.NotNil(t, gotCfg)
	assert.Equal(t, "bolt://localhost:7687", gotCfg.URI, "flag overrides config file")
	assert.Equal(t, "neo4j", gotCfg.Username)
	assert.True(t, source.closed, "connection is closed after export")

	assert.Contains(t, stdout.String(), "typeDefs:")
	assert.Contains(t, stderr.String(), "Updated schema")
}

func TestRun_ConnectFailure(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := writeConfig(t, dir, "neo4j:\n  uri: bolt://localhost:7687\n  username: neo4j\n  password: wrong\n")
	outputPath := filepath.Join(dir, "schema_generated.graphql")

	errAuth := errors.New("Neo.ClientError.Security.Unauthorized")

	var stderr bytes.Buffer

	a := &app{
		stdout: &bytes.Buffer{},
		stderr: &stderr,
		connect: func(context.Context, *neointrospect.Neo4jConfig, *zap.Logger) (sessionSource, error) {
			return nil, errAuth
		},
	}

	err := a.command().Run(t.Context(), []string{"neo4j-introspect", "--config", configPath, "-o", outputPath})
	require.ErrorIs(t, err, errAuth)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr), "output file must not be created")
	assert.NotContains(t, stderr.String(), "Updated schema")
}

func TestExecute_ExitCode(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := writeConfig(t, dir, "neo4j:\n  uri: bolt://localhost:7687\n  username: neo4j\n  password: x\n")

	t.Run("failure is logged", func(t *testing.T) {
		var stderr bytes.Buffer

		a := &app{
			stdout: &bytes.Buffer{},
			stderr: &stderr,
			connect: func(context.Context, *neointrospect.Neo4jConfig, *zap.Logger) (sessionSource, error) {
				return nil, errors.New("Neo.ClientError.Security.Unauthorized")
			},
		}

		code := a.execute(t.Context(), []string{"neo4j-introspect", "--config", configPath, "-o", filepath.Join(dir, "failed.graphql")})
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "ERROR")
		assert.Contains(t, stderr.String(), "Export failed")
		assert.Contains(t, stderr.String(), "Neo.ClientError.Security.Unauthorized")
	})

	t.Run("success", func(t *testing.T) {
		source := &fakeSource{Factory: neotest.NewFactory().
			On("nodeTypeProperties").
			On("relTypeProperties"),
		}

		var stderr bytes.Buffer

		a := &app{
			stdout: &bytes.Buffer{},
			stderr: &stderr,
			connect: func(context.Context, *neointrospect.Neo4jConfig, *zap.Logger) (sessionSource, error) {
				return source, nil
			},
		}

		code := a.execute(t.Context(), []string{"neo4j-introspect", "--config", configPath, "-o", filepath.Join(dir, "ok.graphql")})
		assert.Equal(t, 0, code)
		assert.NotContains(t, stderr.String(), "Export failed")
	})
}

func TestResolveConfig(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := writeConfig(t, dir, `
neo4j:
  uri: neo4j://graph:7687
  username: reader
  password: from-file
  log_level: info
inference:
  always_include_relationships: true
output: from-file.graphql
`)

	t.Setenv("NEO4J_PASSWORD", "from-env")

	var got *neointrospect.Config

	cmd := newApp().command()
	cmd.Action = func(_ context.Context, cmd *cli.Command) error {
		var err error
		got, err = resolveConfig(cmd)

		return err
	}

	err := cmd.Run(t.Context(), []string{
		"neo4j-introspect",
		"--config", configPath,
		"--encrypted",
		"--always-include-relationships=false",
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "neo4j://graph:7687", got.Neo4j.URI)
	assert.Equal(t, "reader", got.Neo4j.Username)
	assert.Equal(t, "from-env", got.Neo4j.Password, "environment overrides config file")
	assert.Equal(t, neointrospect.LogLevelInfo, got.Neo4j.LogLevel)
	assert.True(t, got.Neo4j.Encrypted)
	assert.False(t, got.Inference.AlwaysIncludeRelationships, "flag overrides config file")
	assert.Equal(t, "from-file.graphql", got.Output)
}

func TestResolveConfig_Invalid(t *testing.T) {
	clearEnv(t)

	configPath := writeConfig(t, t.TempDir(), "neo4j:\n  uri: bolt://localhost:7687\n")

	cmd := newApp().command()
	cmd.Action = func(_ context.Context, cmd *cli.Command) error {
		_, err := resolveConfig(cmd)

		return err
	}

	err := cmd.Run(t.Context(), []string{"neo4j-introspect", "--config", configPath})
	require.ErrorIs(t, err, neointrospect.ErrMissingCredentials)
}
