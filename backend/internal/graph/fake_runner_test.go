package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// scriptedRunner answers every statement with a fixed response and records the calls.
type scriptedRunner struct {
	mu      sync.Mutex
	calls   []string
	params  []map[string]any
	records []*neo4j.Record
	err     error
	block   chan struct{}
	done    chan struct{}
}

func (s *scriptedRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.params = append(s.params, params)
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if s.done != nil {
		defer close(s.done)
	}
	return s.records, s.err
}

func (s *scriptedRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func record(pairs ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Keys = append(rec.Keys, pairs[i].(string))
		rec.Values = append(rec.Values, pairs[i+1])
	}
	return rec
}

// memoryGraph understands exactly the statements the Repository issues, which
// lets repository tests exercise real round trips without a database.
type memoryGraph struct {
	mu     sync.Mutex
	seq    int
	apps   map[string]*dbtype.Node
	flows  map[string]*dbtype.Relationship
	calls  int
	lastQ  string
	lastPs map[string]any
}

func newMemoryGraph() *memoryGraph {
	return &memoryGraph{
		apps:  map[string]*dbtype.Node{},
		flows: map[string]*dbtype.Relationship{},
	}
}

func (m *memoryGraph) nextID(kind string) string {
	m.seq++
	return fmt.Sprintf("4:%s:%d", kind, m.seq)
}

func copyProps(params map[string]any, skip ...string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range skip {
		delete(out, k)
	}
	// labels travel as []string in params but come back from Neo4j as []any
	if labels, ok := out["labels"].([]string); ok {
		list := make([]any, len(labels))
		for i, l := range labels {
			list[i] = l
		}
		out["labels"] = list
	}
	return out
}

func (m *memoryGraph) hasRelations(appID string) bool {
	node := m.apps[appID]
	for _, rel := range m.flows {
		if rel.StartElementId == node.ElementId || rel.EndElementId == node.ElementId {
			return true
		}
	}
	return false
}

func (m *memoryGraph) Run(ctx context.Context, q string, p map[string]any) ([]*neo4j.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQ, m.lastPs = q, p

	switch {
	case strings.Contains(q, "CREATE (a:Application"):
		id := p["application_id"].(string)
		node := &dbtype.Node{ElementId: m.nextID("app"), Labels: []string{"Application"}, Props: copyProps(p)}
		m.apps[id] = node
		return []*neo4j.Record{record("a", *node)}, nil

	case strings.Contains(q, "MATCH (a:Application { application_id: $application_id })") && strings.Contains(q, "SET"):
		node, ok := m.apps[p["application_id"].(string)]
		if !ok {
			return nil, nil
		}
		node.Props = copyProps(p)
		return []*neo4j.Record{record("a", *node)}, nil

	case strings.Contains(q, "DELETE a"):
		id := p["application_id"].(string)
		if _, ok := m.apps[id]; !ok {
			return []*neo4j.Record{record("deleted", int64(0))}, nil
		}
		if m.hasRelations(id) {
			return nil, &neo4j.Neo4jError{
				Code: "Neo.ClientError.Schema.ConstraintValidationFailed",
				Msg:  "Cannot delete node, because it still has relationships.",
			}
		}
		delete(m.apps, id)
		return []*neo4j.Record{record("deleted", int64(1))}, nil

	case strings.Contains(q, "MATCH (a:Application { application_id: $application_id })"):
		id := p["application_id"].(string)
		node, ok := m.apps[id]
		if !ok {
			return nil, nil
		}
		return []*neo4j.Record{record("a", *node, "hasRelations", m.hasRelations(id))}, nil

	case strings.Contains(q, "MATCH (a:Application) OPTIONAL MATCH"):
		var out []*neo4j.Record
		for id, node := range m.apps {
			out = append(out, record("a", *node, "hasRelations", m.hasRelations(id)))
		}
		return out, nil

	case strings.Contains(q, "CREATE (initiator)-[f:flow"):
		from, okFrom := m.apps[p["initiator_application"].(string)]
		to, okTo := m.apps[p["target_application"].(string)]
		if !okFrom || !okTo {
			return nil, nil
		}
		rel := &dbtype.Relationship{
			ElementId:      m.nextID("flow"),
			StartElementId: from.ElementId,
			EndElementId:   to.ElementId,
			Type:           "flow",
			Props:          copyProps(p),
		}
		m.flows[p["flow_id"].(string)] = rel
		return []*neo4j.Record{record("f", *rel)}, nil

	case strings.Contains(q, "-[f:flow {flow_id: $flow_id}]->") && strings.Contains(q, "SET"):
		rel, ok := m.flows[p["flow_id"].(string)]
		if !ok {
			return nil, nil
		}
		if rel.Props["initiator_application"] != p["initiator_application"] ||
			rel.Props["target_application"] != p["target_application"] {
			return nil, nil
		}
		rel.Props = copyProps(p)
		return []*neo4j.Record{record("f", *rel)}, nil

	case strings.Contains(q, "DELETE f"):
		id := p["flow_id"].(string)
		if _, ok := m.flows[id]; !ok {
			return []*neo4j.Record{record("deleted", int64(0))}, nil
		}
		delete(m.flows, id)
		return []*neo4j.Record{record("deleted", int64(1))}, nil

	case strings.Contains(q, "MATCH ()-[f:flow {flow_id: $flow_id}]->() RETURN f"):
		rel, ok := m.flows[p["flow_id"].(string)]
		if !ok {
			return nil, nil
		}
		return []*neo4j.Record{record("f", *rel)}, nil

	case strings.Contains(q, "MATCH ()-[r:flow]->() RETURN r"):
		var out []*neo4j.Record
		for _, rel := range m.flows {
			out = append(out, record("r", *rel))
		}
		return out, nil
	}

	return nil, fmt.Errorf("memoryGraph: unexpected statement: %s", q)
}
