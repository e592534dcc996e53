package graphql

import (
	"strings"

	"github.com/rlch/neointrospect/introspection"
)

// scalarTypes maps Neo4j property type names to @neo4j/graphql scalars.
var scalarTypes = map[string]string{
	"String":        "String",
	"Long":          "BigInt",
	"Double":        "Float",
	"Boolean":       "Boolean",
	"Date":          "Date",
	"DateTime":      "DateTime",
	"LocalDateTime": "LocalDateTime",
	"LocalTime":     "LocalTime",
	"Time":          "Time",
	"Duration":      "Duration",
	"Point":         "Point",
}

// fieldType returns the GraphQL type for a property, or false if the property
// has conflicting or unknown types and cannot be represented.
func fieldType(p *introspection.Property) (string, bool) {
	if len(p.Types) != 1 {
		return "", false
	}

	neoType := p.Types[0]
	isList := false

	if elem, ok := strings.CutSuffix(neoType, "Array"); ok {
		neoType = elem
		isList = true
	}

	scalar, ok := scalarTypes[neoType]
	if !ok {
		return "", false
	}

	if isList {
		scalar = "[" + scalar + "]"
	}

	if p.Mandatory {
		scalar += "!"
	}

	return scalar, true
}
