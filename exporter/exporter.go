// Package exporter runs the one-shot schema export: infer type definitions
// from a live database and write them to disk.
package exporter

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rlch/neointrospect"
	"github.com/rlch/neointrospect/graphql"
)

// outputPerm is the mode for files the exporter creates.
const outputPerm = 0o644

// InferFunc produces type definitions for the database behind factory.
// The options must be forwarded unchanged.
type InferFunc func(ctx context.Context, factory neointrospect.SessionFactory, opts neointrospect.InferenceOptions) (*graphql.Result, error)

// Exporter infers a schema and persists it.
type Exporter struct {
	infer     InferFunc
	logger    *zap.Logger
	out       io.Writer
	graphPath string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithInferFunc replaces the inference capability. Defaults to graphql.ToTypeDefs.
func WithInferFunc(f InferFunc) Option {
	return func(e *Exporter) {
		e.infer = f
	}
}

// WithLogger sets the logger used for status messages.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOutput sets where the result dump is written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Exporter) {
		e.out = w
	}
}

// WithGraphOutput also persists the introspected graph as YAML at path.
func WithGraphOutput(path string) Option {
	return func(e *Exporter) {
		e.graphPath = path
	}
}

// New creates an Exporter with the given options.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		infer: func(ctx context.Context, f neointrospect.SessionFactory, o neointrospect.InferenceOptions) (*graphql.Result, error) {
			return graphql.ToTypeDefs(ctx, f, o)
		},
		logger: zap.NewNop(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Export infers type definitions through factory and writes them to
// outputPath, replacing any previous content. Nothing is written if
// inference fails.
func (e *Exporter) Export(
	ctx context.Context,
	factory neointrospect.SessionFactory,
	opts neointrospect.InferenceOptions,
	outputPath string,
) error {
	if factory == nil {
		return ErrNoSessionFactory
	}

	e.logger.Debug("Inferring schema",
		zap.Bool("alwaysIncludeRelationships", opts.AlwaysIncludeRelationships))

	result, err := e.infer(ctx, factory, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInference, err)
	}

	if result == nil {
		return ErrNoResult
	}

	if err := dumpResult(e.out, result); err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(result.TypeDefs), outputPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	if e.graphPath != "" && result.Graph != nil {
		data, err := yaml.Marshal(result.Graph)
		if err != nil {
			return fmt.Errorf("%w: encoding graph: %w", ErrWriteOutput, err)
		}

		if err := os.WriteFile(e.graphPath, data, outputPerm); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	e.logger.Info("Updated schema", zap.String("path", outputPath))

	return nil
}

func dumpResult(w io.Writer, result *graphql.Result) error {
	if w == nil {
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("exporter: dumping result: %w", err)
	}

	return enc.Close()
}
