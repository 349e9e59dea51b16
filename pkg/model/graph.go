package model

// Direction selects which incident edges to follow during neighbor lookup.
type Direction int

const (
	DirectionOut Direction = iota
	DirectionIn
	DirectionBoth
)

// Graph owns the nodes and edges for one resolved analysis. Construction is
// append-only: a fresh graph is built per analysis run rather than mutated,
// so after the resolver returns, the graph is treated as immutable.
//
// Adjacency is indexed at insertion time: node lookup is O(1) and neighbor
// lookup is O(degree).
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     []Edge
	edgeKeys  map[string]struct{}
	outgoing  map[string][]int // node id -> indices into edges
	incoming  map[string][]int
	fileErrs  map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeKeys: make(map[string]struct{}),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
		fileErrs: make(map[string][]string),
	}
}

// AddNode inserts a node. Node ids are unique within a graph; inserting a
// second node under an existing id is rejected.
func (g *Graph) AddNode(n *Node) error {
	if !n.Kind.Valid() {
		return &GraphError{Op: "AddNode", NodeID: n.ID, Cause: ErrInvalidKind}
	}
	if _, exists := g.nodes[n.ID]; exists {
		return &GraphError{Op: "AddNode", NodeID: n.ID, Cause: ErrDuplicateNode}
	}
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
// An exact (source, target, relation) duplicate is a no-op so repeated
// references never inflate degree or highlight computations.
func (g *Graph) AddEdge(e Edge) error {
	if !e.Relation.Valid() {
		return &GraphError{Op: "AddEdge", Source: e.Source, Target: e.Target, Relation: e.Relation, Cause: ErrInvalidRelation}
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return DanglingReferenceError("AddEdge", e)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return DanglingReferenceError("AddEdge", e)
	}
	key := e.Key()
	if _, dup := g.edgeKeys[key]; dup {
		return nil
	}
	g.edgeKeys[key] = struct{}{}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], idx)
	g.incoming[e.Target] = append(g.incoming[e.Target], idx)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasEdge reports whether the exact (source, target, relation) edge exists.
func (g *Graph) HasEdge(e Edge) bool {
	_, ok := g.edgeKeys[e.Key()]
	return ok
}

// Neighbors returns the distinct node ids adjacent to id in the given
// direction. A node connected by several parallel edges appears once.
func (g *Graph) Neighbors(id string, dir Direction) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(nid string) {
		if _, dup := seen[nid]; dup {
			return
		}
		seen[nid] = struct{}{}
		out = append(out, nid)
	}
	if dir == DirectionOut || dir == DirectionBoth {
		for _, idx := range g.outgoing[id] {
			add(g.edges[idx].Target)
		}
	}
	if dir == DirectionIn || dir == DirectionBoth {
		for _, idx := range g.incoming[id] {
			add(g.edges[idx].Source)
		}
	}
	return out
}

// IncidentEdges returns every edge touching id in either direction.
// Self-loops are reported once.
func (g *Graph) IncidentEdges(id string) []Edge {
	seen := make(map[string]struct{})
	var out []Edge
	for _, idx := range g.outgoing[id] {
		e := g.edges[idx]
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}
	for _, idx := range g.incoming[id] {
		e := g.edges[idx]
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Degree returns the number of distinct edges incident to id.
func (g *Graph) Degree(id string) int {
	return len(g.IncidentEdges(id))
}

// NodesByKind returns the nodes of the given kind in insertion order.
func (g *Graph) NodesByKind(kind Kind) []*Node {
	var out []*Node
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// RecordFileError attaches a per-file resolution error to the graph
// metadata. Malformed input degrades the affected file, never the run.
func (g *Graph) RecordFileError(path, msg string) {
	g.fileErrs[path] = append(g.fileErrs[path], msg)
}

// FileErrors returns the per-file resolution errors keyed by file path.
func (g *Graph) FileErrors() map[string][]string {
	out := make(map[string][]string, len(g.fileErrs))
	for k, v := range g.fileErrs {
		out[k] = append([]string(nil), v...)
	}
	return out
}
