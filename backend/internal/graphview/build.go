package graphview

import (
	"fmt"
	"math"
	"strings"

	"archmap/backend/internal/constants"
	"archmap/backend/internal/graph"
	"archmap/backend/internal/state"
)

// Result rows use a for the first node, e for the relationship and b for the
// second node, as returned by the overview and expansion queries.
const (
	keyNodeA = "a"
	keyEdge  = "e"
	keyNodeB = "b"
)

// NodeLabel picks name, then nickname, then a placeholder
func NodeLabel(props map[string]any) string {
	for _, key := range []string{"name", "nickname"} {
		if v, ok := props[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return constants.UnnamedLabel
}

// NodeGroup is the lower-cased first label
func NodeGroup(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return strings.ToLower(labels[0])
}

func nodeView(n graph.Node) state.NodeView {
	return state.NodeView{
		ID:         n.ElementID,
		Label:      NodeLabel(n.Properties),
		Title:      NodeTooltip(n.Properties),
		Group:      NodeGroup(n.Labels),
		Properties: n.Properties,
	}
}

func edgeView(r graph.Relationship) state.EdgeView {
	label := r.Type
	if name, ok := r.Properties["name"].(string); ok && name != "" {
		label = name
	}
	return state.EdgeView{
		ID:         r.ElementID,
		From:       r.StartNodeElementID,
		To:         r.EndNodeElementID,
		Label:      label,
		Arrows:     "to",
		Title:      EdgeTooltip(r.Properties),
		Properties: r.Properties,
	}
}

// BuildGraph turns (a, e, b) rows into a deduplicated node list and an edge
// list. Rows with other keys contribute nothing.
func BuildGraph(rows []graph.Row) state.GraphDelta {
	delta := state.GraphDelta{Nodes: []state.NodeView{}, Edges: []state.EdgeView{}}
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	for _, row := range rows {
		for _, key := range []string{keyNodeA, keyNodeB} {
			n, ok := row.Node(key)
			if !ok || seenNodes[n.ElementID] {
				continue
			}
			seenNodes[n.ElementID] = true
			delta.Nodes = append(delta.Nodes, nodeView(n))
		}

		rel, ok := row.Relationship(keyEdge)
		if !ok || rel.StartNodeElementID == "" || rel.EndNodeElementID == "" || seenEdges[rel.ElementID] {
			continue
		}
		seenEdges[rel.ElementID] = true
		delta.Edges = append(delta.Edges, edgeView(rel))
	}
	return delta
}

// Render replaces the session's elements with the rows' graph
func Render(sess *state.Session, rows []graph.Row) state.GraphDelta {
	delta := BuildGraph(rows)
	sess.Reset()
	for _, n := range delta.Nodes {
		sess.Nodes[n.ID] = n
	}
	for _, e := range delta.Edges {
		sess.Edges[e.ID] = e
	}
	return delta
}

// Expand merges neighbourhood rows into the session and returns only what was
// added. New nodes are placed on a circle of constants.ExpansionRadius around
// origin; the angle is the row index times 2π/len(rows).
func Expand(sess *state.Session, origin state.Position, rows []graph.Row) state.GraphDelta {
	delta := state.GraphDelta{Nodes: []state.NodeView{}, Edges: []state.EdgeView{}}
	if len(rows) == 0 {
		return delta
	}
	angleStep := 2 * math.Pi / float64(len(rows))

	for i, row := range rows {
		angle := angleStep * float64(i)
		for _, key := range []string{keyNodeA, keyNodeB} {
			n, ok := row.Node(key)
			if !ok {
				continue
			}
			if _, exists := sess.Nodes[n.ElementID]; exists {
				continue
			}
			view := nodeView(n)
			x := origin.X + constants.ExpansionRadius*math.Cos(angle)
			y := origin.Y + constants.ExpansionRadius*math.Sin(angle)
			view.X, view.Y = &x, &y
			sess.Nodes[n.ElementID] = view
			delta.Nodes = append(delta.Nodes, view)
		}

		rel, ok := row.Relationship(keyEdge)
		if !ok {
			continue
		}
		if _, exists := sess.Edges[rel.ElementID]; exists {
			continue
		}
		view := edgeView(rel)
		sess.Edges[rel.ElementID] = view
		delta.Edges = append(delta.Edges, view)
	}
	return delta
}
