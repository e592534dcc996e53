package graphql

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
)

var plurals = pluralize.NewClient()

var invalidNameChars = regexp.MustCompile(`[^_0-9A-Za-z]+`)

// reservedTypeNames are taken by GraphQL itself or by @neo4j/graphql scalars
// and root types.
var reservedTypeNames = []string{
	"String", "Int", "Float", "Boolean", "ID",
	"BigInt", "Date", "DateTime", "LocalDateTime", "LocalTime", "Time", "Duration",
	"Point", "CartesianPoint",
	"Query", "Mutation", "Subscription",
}

// sanitizeName maps an arbitrary label, type or property name onto the
// GraphQL name grammar /[_A-Za-z][_0-9A-Za-z]*/.
func sanitizeName(s string) string {
	out := invalidNameChars.ReplaceAllString(s, "_")
	if out == "" {
		return "_"
	}

	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}

	return out
}

// pascalCase turns ACTED_IN, acted_in or actedIn into ActedIn.
func pascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || !(r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})

	var b strings.Builder

	for _, p := range parts {
		if strings.ToUpper(p) == p {
			p = strings.ToLower(p)
		}

		b.WriteString(upperFirst(p))
	}

	return b.String()
}

// camelCase is pascalCase with a lower-case first letter.
func camelCase(s string) string {
	return lowerFirst(pascalCase(s))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}

// plural pluralizes the last word of s, keeping its case: Person becomes
// People, Movie becomes Movies.
func plural(s string) string {
	if s == "" {
		return s
	}

	return plurals.Plural(s)
}

// nameSet hands out unique names, suffixing 2, 3, ... on collision.
type nameSet map[string]bool

func newNameSet(taken ...string) nameSet {
	ns := make(nameSet, len(taken))
	for _, n := range taken {
		ns[n] = true
	}

	return ns
}

func (ns nameSet) claim(name string) string {
	if !ns[name] {
		ns[name] = true

		return name
	}

	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !ns[candidate] {
			ns[candidate] = true

			return candidate
		}
	}
}

// quoteString renders s as a GraphQL string literal.
func quoteString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

	return `"` + r.Replace(s) + `"`
}
