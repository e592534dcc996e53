// Package introspection reads the schema of a live Neo4j database through the
// built-in db.schema procedures and samples relationship endpoints.
package introspection

import (
	"slices"
	"sort"
	"strings"
)

// Graph is the introspected shape of a database.
type Graph struct {
	// Nodes maps a node key (sorted labels joined by ":") to its node type.
	Nodes map[string]*NodeType `yaml:"nodes"`

	// Relationships maps a relationship type name to its definition.
	Relationships map[string]*RelationshipType `yaml:"relationships"`
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:         make(map[string]*NodeType),
		Relationships: make(map[string]*RelationshipType),
	}
}

// NodeType is a distinct combination of labels seen on nodes.
type NodeType struct {
	Labels     []string    `yaml:"labels"`
	Properties []*Property `yaml:"properties,omitempty"`
}

// Key returns the map key for this node type.
func (n *NodeType) Key() string {
	return NodeKey(n.Labels)
}

// RelationshipType is a relationship type with its properties and the label
// sets observed at either end.
type RelationshipType struct {
	Type       string      `yaml:"type"`
	Properties []*Property `yaml:"properties,omitempty"`
	Paths      []Path      `yaml:"paths,omitempty"`
}

// Path is one observed (from)-[type]->(to) combination, by node key.
type Path struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Property is a property seen on a node or relationship type.
type Property struct {
	Name string `yaml:"name"`

	// Types are the Neo4j type names reported for the property, e.g. "String"
	// or "StringArray". More than one entry means the values disagree.
	Types []string `yaml:"types"`

	// Mandatory is true when every entity of the type carries the property.
	Mandatory bool `yaml:"mandatory,omitempty"`
}

// NodeKey builds the node key for a label set. Label order does not matter.
// Labels containing ':' or '`' are backtick-quoted, so {"A:B"} and {"A", "B"}
// get different keys.
func NodeKey(labels []string) string {
	sorted := slices.Clone(labels)
	sort.Strings(sorted)

	for i, l := range sorted {
		if strings.ContainsAny(l, ":`") {
			sorted[i] = QuoteName(l)
		}
	}

	return strings.Join(sorted, ":")
}

// SortedNodeKeys returns the node keys in lexical order.
func (g *Graph) SortedNodeKeys() []string {
	keys := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// SortedRelationshipTypes returns the relationship type names in lexical order.
func (g *Graph) SortedRelationshipTypes() []string {
	keys := make([]string, 0, len(g.Relationships))
	for k := range g.Relationships {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (g *Graph) node(labels []string) *NodeType {
	key := NodeKey(labels)

	n, ok := g.Nodes[key]
	if !ok {
		sorted := slices.Clone(labels)
		sort.Strings(sorted)
		n = &NodeType{Labels: sorted}
		g.Nodes[key] = n
	}

	return n
}

func (g *Graph) relationship(relType string) *RelationshipType {
	r, ok := g.Relationships[relType]
	if !ok {
		r = &RelationshipType{Type: relType}
		g.Relationships[relType] = r
	}

	return r
}

// sortGraph orders properties and paths for deterministic output.
func sortGraph(g *Graph) {
	byName := func(props []*Property) {
		sort.Slice(props, func(i, j int) bool {
			return props[i].Name < props[j].Name
		})
	}

	for _, n := range g.Nodes {
		byName(n.Properties)
	}

	for _, r := range g.Relationships {
		byName(r.Properties)
		sort.Slice(r.Paths, func(i, j int) bool {
			if r.Paths[i].From != r.Paths[j].From {
				return r.Paths[i].From < r.Paths[j].From
			}

			return r.Paths[i].To < r.Paths[j].To
		})
	}
}
