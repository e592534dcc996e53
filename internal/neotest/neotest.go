// Package neotest provides an in-memory SessionFactory for tests.
package neotest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rlch/neointrospect"
)

// ErrNoResponse is returned when a query matches no registered response.
var ErrNoResponse = errors.New("neotest: no response registered for query")

type response struct {
	match string
	rows  []map[string]any
	err   error
}

// Factory is a SessionFactory that answers queries from canned responses.
// The first registered response whose match string is contained in the query wins.
type Factory struct {
	mu        sync.Mutex
	responses []response
	queries   []string
	opened    int
	closed    int
	openErr   error
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// On registers rows returned for queries containing match.
func (f *Factory) On(match string, rows ...map[string]any) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses = append(f.responses, response{match: match, rows: rows})

	return f
}

// Fail registers an error returned for queries containing match.
func (f *Factory) Fail(match string, err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses = append(f.responses, response{match: match, err: err})

	return f
}

// FailOpen makes every ReadSession call fail with err.
func (f *Factory) FailOpen(err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.openErr = err

	return f
}

// ReadSession implements neointrospect.SessionFactory.
func (f *Factory) ReadSession(context.Context) (neointrospect.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}

	f.opened++

	return &session{factory: f}, nil
}

// Queries returns every query run so far, in order.
func (f *Factory) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.queries...)
}

// Sessions returns the number of sessions opened and closed.
func (f *Factory) Sessions() (opened, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.opened, f.closed
}

type session struct {
	factory *Factory
}

func (s *session) Run(_ context.Context, query string, _ map[string]any) ([]map[string]any, error) {
	f := s.factory

	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)

	for _, r := range f.responses {
		if strings.Contains(query, r.match) {
			return r.rows, r.err
		}
	}

	return nil, ErrNoResponse
}

func (s *session) Close(context.Context) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	s.factory.closed++

	return nil
}

// NodeRow builds a db.schema.nodeTypeProperties row. An empty prop yields
// a row with a null property, as Neo4j reports for nodes without properties.
func NodeRow(labels []string, prop string, types []string, mandatory bool) map[string]any {
	nodeType := ""
	labelList := make([]any, len(labels))

	for i, l := range labels {
		nodeType += ":" + quote(l)
		labelList[i] = l
	}

	return map[string]any{
		"nodeType":      nodeType,
		"nodeLabels":    labelList,
		"propertyName":  nullable(prop),
		"propertyTypes": typeList(prop, types),
		"mandatory":     mandatory,
	}
}

// RelRow builds a db.schema.relTypeProperties row.
func RelRow(relType, prop string, types []string, mandatory bool) map[string]any {
	return map[string]any{
		"relType":       ":" + quote(relType),
		"propertyName":  nullable(prop),
		"propertyTypes": typeList(prop, types),
		"mandatory":     mandatory,
	}
}

// PathRow builds a relationship endpoint sample row.
func PathRow(from, to []string) map[string]any {
	return map[string]any{
		"from": toAny(from),
		"to":   toAny(to),
	}
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func typeList(prop string, types []string) any {
	if prop == "" {
		return nil
	}

	return toAny(types)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}
