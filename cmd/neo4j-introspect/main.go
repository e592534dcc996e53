// Command neo4j-introspect generates GraphQL type definitions from the schema
// of a running Neo4j database.
//
// Usage:
//
//	neo4j-introspect --uri bolt://localhost:7687 -u neo4j -p secret -o schema_generated.graphql
//
// Connection settings are read from flags, NEO4J_* environment variables, a
// .env file, or the nearest .neointrospect.yaml, in that order of precedence.
package main

import (
	"context"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/neointrospect"
	"github.com/rlch/neointrospect/databases/neo4j"
	"github.com/rlch/neointrospect/exporter"
	"github.com/rlch/neointrospect/graphql"
	"github.com/rlch/neointrospect/introspection"
)

// sessionSource is a SessionFactory that must be closed when done.
type sessionSource interface {
	neointrospect.SessionFactory
	Close(ctx context.Context) error
}

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	connect func(ctx context.Context, cfg *neointrospect.Neo4jConfig, logger *zap.Logger) (sessionSource, error)
}

func newApp() *app {
	return &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		connect: func(ctx context.Context, cfg *neointrospect.Neo4jConfig, logger *zap.Logger) (sessionSource, error) {
			return neo4j.New(ctx, cfg, logger)
		},
	}
}

func main() {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	os.Exit(newApp().execute(context.Background(), os.Args))
}

// execute runs the command and returns the process exit code. A failure is
// logged on stderr.
func (a *app) execute(ctx context.Context, args []string) int {
	err := a.command().Run(ctx, args)
	if err == nil {
		return 0
	}

	logger := newLogger(a.stderr, false)
	logger.Error("Export failed", zap.Error(err))
	_ = logger.Sync()

	return 1
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "neo4j-introspect",
		Usage:     "Generate GraphQL type definitions from an existing Neo4j database",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: nearest .neointrospect.yaml)",
			},
			&cli.StringFlag{
				Name:    "uri",
				Usage:   "Neo4j connection URI",
				Sources: cli.EnvVars("NEO4J_URI"),
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Neo4j username",
				Sources: cli.EnvVars("NEO4J_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Neo4j password",
				Sources: cli.EnvVars("NEO4J_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "database name (default: server default)",
				Sources: cli.EnvVars("NEO4J_DATABASE"),
			},
			&cli.BoolFlag{
				Name:    "encrypted",
				Usage:   "use TLS for bolt:// and neo4j:// URIs",
				Sources: cli.EnvVars("NEO4J_ENCRYPTED"),
			},
			&cli.StringFlag{
				Name:    "driver-log-level",
				Usage:   "driver log verbosity (debug, info, warn, error, off)",
				Sources: cli.EnvVars("NEO4J_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "always-include-relationships",
				Usage: "keep relationships to node types without representable properties",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file for type definitions (default: " + neointrospect.DefaultOutputPath + ")",
			},
			&cli.StringFlag{
				Name:  "graph-out",
				Usage: "also write the introspected graph as YAML to this file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: a.run,
	}
}

func (a *app) run(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(a.stderr, cmd.Bool("debug"))
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	client, err := a.connect(ctx, &cfg.Neo4j, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := client.Close(ctx); err != nil {
			logger.Warn("Failed to close connection", zap.Error(err))
		}
	}()

	e := exporter.New(
		exporter.WithLogger(logger),
		exporter.WithOutput(a.stdout),
		exporter.WithGraphOutput(cfg.GraphOutput),
		exporter.WithInferFunc(func(ctx context.Context, f neointrospect.SessionFactory, o neointrospect.InferenceOptions) (*graphql.Result, error) {
			return graphql.ToTypeDefs(ctx, f, o, introspection.WithLogger(logger))
		}),
	)

	return e.Export(ctx, client, cfg.Inference, cfg.Output)
}
