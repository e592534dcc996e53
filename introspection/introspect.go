package introspection

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rlch/neointrospect"
)

const (
	nodeTypePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeType, nodeLabels, propertyName, propertyTypes, mandatory
RETURN nodeType, nodeLabels, propertyName, propertyTypes, mandatory`

	relTypePropertiesQuery = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes, mandatory
RETURN relType, propertyName, propertyTypes, mandatory`

	// DefaultSampleSize is how many relationships are inspected per type when
	// discovering endpoint labels.
	DefaultSampleSize = 100

	// DefaultConcurrency bounds the sessions open at once while sampling.
	DefaultConcurrency = 4
)

// Introspector reads a Graph from sessions minted by a SessionFactory.
type Introspector struct {
	factory     neointrospect.SessionFactory
	logger      *zap.Logger
	sampleSize  int
	concurrency int
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Introspector) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithSampleSize sets how many relationships per type are sampled for endpoints.
func WithSampleSize(n int) Option {
	return func(i *Introspector) {
		if n > 0 {
			i.sampleSize = n
		}
	}
}

// WithConcurrency sets the maximum number of sessions used in parallel.
func WithConcurrency(n int) Option {
	return func(i *Introspector) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// New creates an Introspector over the given factory.
func New(factory neointrospect.SessionFactory, opts ...Option) *Introspector {
	i := &Introspector{
		factory:     factory,
		logger:      zap.NewNop(),
		sampleSize:  DefaultSampleSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Introspect is shorthand for New(factory).Introspect(ctx).
func Introspect(ctx context.Context, factory neointrospect.SessionFactory) (*Graph, error) {
	return New(factory).Introspect(ctx)
}

// Introspect reads node types, relationship types and relationship endpoints.
func (i *Introspector) Introspect(ctx context.Context) (*Graph, error) {
	if i.factory == nil {
		return nil, ErrNoSessionFactory
	}

	g := NewGraph()

	if err := i.readNodeTypes(ctx, g); err != nil {
		return nil, err
	}

	if err := i.readRelationshipTypes(ctx, g); err != nil {
		return nil, err
	}

	if err := i.samplePaths(ctx, g); err != nil {
		return nil, err
	}

	sortGraph(g)

	i.logger.Debug("Introspected graph",
		zap.Int("nodeTypes", len(g.Nodes)),
		zap.Int("relationshipTypes", len(g.Relationships)))

	return g, nil
}

func (i *Introspector) readNodeTypes(ctx context.Context, g *Graph) error {
	rows, err := i.query(ctx, nodeTypePropertiesQuery, nil)
	if err != nil {
		return fmt.Errorf("%w: node type properties: %w", ErrQuery, err)
	}

	for _, row := range rows {
		labels := stringList(row["nodeLabels"])
		if len(labels) == 0 {
			labels = splitTypeName(row["nodeType"])
		}

		// Unlabelled nodes cannot be described as a type.
		if len(labels) == 0 {
			continue
		}

		node := g.node(labels)
		if prop := propertyFromRow(row); prop != nil {
			node.Properties = append(node.Properties, prop)
		}
	}

	return nil
}

func (i *Introspector) readRelationshipTypes(ctx context.Context, g *Graph) error {
	rows, err := i.query(ctx, relTypePropertiesQuery, nil)
	if err != nil {
		return fmt.Errorf("%w: relationship type properties: %w", ErrQuery, err)
	}

	for _, row := range rows {
		names := splitTypeName(row["relType"])
		if len(names) == 0 {
			continue
		}

		rel := g.relationship(names[0])
		if prop := propertyFromRow(row); prop != nil {
			rel.Properties = append(rel.Properties, prop)
		}
	}

	return nil
}

// samplePaths discovers the endpoint label sets of every relationship type,
// one session per type.
func (i *Introspector) samplePaths(ctx context.Context, g *Graph) error {
	relTypes := g.SortedRelationshipTypes()
	paths := make([][]Path, len(relTypes))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(i.concurrency)

	for idx, relType := range relTypes {
		eg.Go(func() error {
			rows, err := i.query(egCtx, pathSampleQuery(relType), map[string]any{"limit": i.sampleSize})
			if err != nil {
				return fmt.Errorf("%w: endpoints of %s: %w", ErrQuery, relType, err)
			}

			seen := make(map[Path]bool, len(rows))
			for _, row := range rows {
				from := stringList(row["from"])
				to := stringList(row["to"])
				if len(from) == 0 || len(to) == 0 {
					continue
				}

				p := Path{From: NodeKey(from), To: NodeKey(to)}
				if !seen[p] {
					seen[p] = true
					paths[idx] = append(paths[idx], p)
				}
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for idx, relType := range relTypes {
		g.Relationships[relType].Paths = paths[idx]
	}

	return nil
}

func (i *Introspector) query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session, err := i.factory.ReadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}

	defer func() {
		if cerr := session.Close(ctx); cerr != nil {
			i.logger.Warn("Failed to close session", zap.Error(cerr))
		}
	}()

	return session.Run(ctx, query, params)
}

func pathSampleQuery(relType string) string {
	return "MATCH (n)-[r:" + QuoteName(relType) + "]->(m)\n" +
		"WITH n, r, m LIMIT $limit\n" +
		"WITH DISTINCT labels(n) AS from, labels(m) AS to\n" +
		"WHERE size(from) > 0 AND size(to) > 0\n" +
		"RETURN from, to"
}

// QuoteName escapes a label or relationship type for use in Cypher.
func QuoteName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func propertyFromRow(row map[string]any) *Property {
	name, _ := row["propertyName"].(string)
	if name == "" {
		return nil
	}

	mandatory, _ := row["mandatory"].(bool)

	return &Property{
		Name:      name,
		Types:     stringList(row["propertyTypes"]),
		Mandatory: mandatory,
	}
}

// splitTypeName parses the nodeType/relType strings returned by the schema
// procedures, e.g. ":`Person`:`Actor`" or ":`ACTED_IN`".
func splitTypeName(v any) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}

	var (
		names   []string
		current strings.Builder
		quoted  bool
	)

	flush := func() {
		if current.Len() > 0 {
			names = append(names, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for idx := 0; idx < len(runes); idx++ {
		r := runes[idx]

		switch {
		case r == '`' && quoted && idx+1 < len(runes) && runes[idx+1] == '`':
			current.WriteRune('`')
			idx++
		case r == '`':
			quoted = !quoted
		case r == ':' && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return names
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
