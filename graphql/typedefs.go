// Package graphql generates @neo4j/graphql type definitions from an
// introspected graph.
package graphql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rlch/neointrospect"
	"github.com/rlch/neointrospect/introspection"
)

// Result is the outcome of schema inference.
type Result struct {
	// TypeDefs is the generated GraphQL SDL.
	TypeDefs string `yaml:"typeDefs"`

	// Graph is the introspected model TypeDefs was generated from.
	Graph *introspection.Graph `yaml:"graph"`
}

// ToTypeDefs introspects the database behind factory and generates type
// definitions for it.
func ToTypeDefs(
	ctx context.Context,
	factory neointrospect.SessionFactory,
	opts neointrospect.InferenceOptions,
	introspectOpts ...introspection.Option,
) (*Result, error) {
	g, err := introspection.New(factory, introspectOpts...).Introspect(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		TypeDefs: Generate(g, opts),
		Graph:    g,
	}, nil
}

type field struct {
	name       string
	typ        string
	directives string
}

type objectType struct {
	name       string
	directives string
	properties []field
	relations  []field
	fieldNames nameSet
}

type propertiesInterface struct {
	name   string
	fields []field
}

// Generate renders g as GraphQL SDL. Output is deterministic for a given graph.
func Generate(g *introspection.Graph, opts neointrospect.InferenceOptions) string {
	typeNames := newNameSet(reservedTypeNames...)
	types := make(map[string]*objectType)

	for _, key := range g.SortedNodeKeys() {
		node := g.Nodes[key]
		props := propertyFields(node.Properties)

		// A node type without representable properties only earns a place in
		// the schema when relationships must always be kept.
		if len(props) == 0 && !opts.AlwaysIncludeRelationships {
			continue
		}

		types[key] = newObjectType(typeNames, node, props)
	}

	var interfaces []propertiesInterface

	for _, relType := range g.SortedRelationshipTypes() {
		rel := g.Relationships[relType]

		var endpoints []introspection.Path
		for _, p := range rel.Paths {
			if types[p.From] != nil && types[p.To] != nil {
				endpoints = append(endpoints, p)
			}
		}

		if len(endpoints) == 0 {
			continue
		}

		directiveArgs := "type: " + quoteString(rel.Type)

		var propsArg string
		if fields := propertyFields(rel.Properties); len(fields) > 0 {
			iface := propertiesInterface{
				name:   typeNames.claim(sanitizeName(pascalCase(rel.Type) + "Properties")),
				fields: fields,
			}
			interfaces = append(interfaces, iface)
			propsArg = ", properties: " + quoteString(iface.name)
		}

		relName := camelCase(rel.Type)
		if relName == "" {
			relName = "related"
		}

		for _, p := range endpoints {
			from, to := types[p.From], types[p.To]

			from.addRelation(
				sanitizeName(relName+plural(to.name)),
				"["+to.name+"!]!",
				"@relationship("+directiveArgs+", direction: OUT"+propsArg+")",
			)
			to.addRelation(
				sanitizeName(plural(lowerFirst(from.name))+upperFirst(relName)),
				"["+from.name+"!]!",
				"@relationship("+directiveArgs+", direction: IN"+propsArg+")",
			)
		}
	}

	var defs []string

	sort.Slice(interfaces, func(i, j int) bool { return interfaces[i].name < interfaces[j].name })

	for _, iface := range interfaces {
		defs = append(defs, renderDefinition("interface "+iface.name+" @relationshipProperties", iface.fields))
	}

	ordered := make([]*objectType, 0, len(types))
	for _, t := range types {
		if len(t.properties)+len(t.relations) > 0 {
			ordered = append(ordered, t)
		}
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].name < ordered[j].name })

	for _, t := range ordered {
		header := "type " + t.name
		if t.directives != "" {
			header += " " + t.directives
		}

		sort.Slice(t.relations, func(i, j int) bool { return t.relations[i].name < t.relations[j].name })
		defs = append(defs, renderDefinition(header, append(t.properties, t.relations...)))
	}

	if len(defs) == 0 {
		return ""
	}

	return strings.Join(defs, "\n\n") + "\n"
}

func newObjectType(typeNames nameSet, node *introspection.NodeType, props []field) *objectType {
	sanitized := make([]string, len(node.Labels))
	for i, l := range node.Labels {
		sanitized[i] = sanitizeName(l)
	}

	name := typeNames.claim(strings.Join(sanitized, "_"))

	var directives string
	if len(node.Labels) > 1 || name != node.Labels[0] {
		quoted := make([]string, len(node.Labels))
		for i, l := range node.Labels {
			quoted[i] = quoteString(l)
		}

		directives = "@node(labels: [" + strings.Join(quoted, ", ") + "])"
	}

	t := &objectType{
		name:       name,
		directives: directives,
		properties: props,
		fieldNames: newNameSet(),
	}
	for _, p := range props {
		t.fieldNames[p.name] = true
	}

	return t
}

func (t *objectType) addRelation(name, typ, directives string) {
	t.relations = append(t.relations, field{
		name:       t.fieldNames.claim(name),
		typ:        typ,
		directives: directives,
	})
}

// propertyFields converts the representable properties, in order.
func propertyFields(props []*introspection.Property) []field {
	names := newNameSet()

	var fields []field

	for _, p := range props {
		typ, ok := fieldType(p)
		if !ok {
			continue
		}

		f := field{typ: typ}

		sanitized := sanitizeName(p.Name)
		f.name = names.claim(sanitized)

		if f.name != p.Name {
			f.directives = "@alias(property: " + quoteString(p.Name) + ")"
		}

		fields = append(fields, f)
	}

	return fields
}

func renderDefinition(header string, fields []field) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s {\n", header)

	for _, f := range fields {
		fmt.Fprintf(&b, "\t%s: %s", f.name, f.typ)

		if f.directives != "" {
			b.WriteString(" " + f.directives)
		}

		b.WriteString("\n")
	}

	b.WriteString("}")

	return b.String()
}
