package railway

import (
	"container/heap"

	"github.com/railwayai/railwayai/railerr"
)

// Graph is a directed multigraph of Nodes and Edges; it exclusively owns
// both (spec §3 Ownership). Parallel edges between the same endpoints are
// never deduplicated.
type Graph struct {
	nodes map[string]*Node
	edges map[string]Edge
	// adjacency[from] lists the edge IDs leaving "from", materializing the
	// reverse direction eagerly for bidirectional edges so pathfinding
	// never has to special-case the flag at lookup time (spec §4.1 edge
	// case policy: "pick one, apply uniformly").
	adjacency map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]Edge),
		adjacency: make(map[string][]string),
	}
}

// AddNode inserts a node, failing with DuplicateID if the id is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return railerr.New(railerr.InvalidArgument, "railway.AddNode")
	}
	if _, exists := g.nodes[n.ID]; exists {
		return railerr.New(railerr.DuplicateID, "railway.AddNode")
	}
	cp := n
	g.nodes[n.ID] = &cp
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// RemoveNode removes a node and every incident edge.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return railerr.New(railerr.UnknownID, "railway.RemoveNode")
	}
	delete(g.nodes, id)
	delete(g.adjacency, id)
	for eid, e := range g.edges {
		if e.From == id || e.To == id {
			delete(g.edges, eid)
		}
	}
	for from, list := range g.adjacency {
		kept := list[:0]
		for _, eid := range list {
			if e, ok := g.edges[eid]; ok {
				_ = e
				kept = append(kept, eid)
			}
		}
		g.adjacency[from] = kept
	}
	return nil
}

// AddEdge inserts a directed edge, failing with UnknownNode (surfaced as
// UnknownID) if either endpoint is missing. When Bidirectional is set,
// the reverse traversal is materialized as an implicit additional
// adjacency entry sharing the same physical Edge record, so that
// head-on detection (conflict package) can recognize both directions
// occupy the same resource.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" || e.LengthKm <= 0 || e.MaxSpeedKmh <= 0 || e.Capacity < 1 {
		return railerr.New(railerr.InvalidArgument, "railway.AddEdge")
	}
	if _, ok := g.nodes[e.From]; !ok {
		return railerr.New(railerr.UnknownID, "railway.AddEdge")
	}
	if _, ok := g.nodes[e.To]; !ok {
		return railerr.New(railerr.UnknownID, "railway.AddEdge")
	}
	g.edges[e.ID] = e
	g.adjacency[e.From] = append(g.adjacency[e.From], e.ID)
	if e.Bidirectional {
		g.adjacency[e.To] = append(g.adjacency[e.To], e.ID)
	}
	return nil
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// HasEdge reports whether any edge connects from->to directly (first
// match wins; parallel edges are never deduplicated in storage).
func (g *Graph) HasEdge(from, to string) bool {
	for _, eid := range g.adjacency[from] {
		e := g.edges[eid]
		if g.edgeGoesFrom(e, from) == to {
			return true
		}
	}
	return false
}

// EdgeBetween returns the first edge connecting from->to directly.
func (g *Graph) EdgeBetween(from, to string) (Edge, bool) {
	for _, eid := range g.adjacency[from] {
		e := g.edges[eid]
		if g.edgeGoesFrom(e, from) == to {
			return e, true
		}
	}
	return Edge{}, false
}

// edgeGoesFrom returns the node reached by traversing e starting at
// origin, honoring the bidirectional flag.
func (g *Graph) edgeGoesFrom(e Edge, origin string) string {
	if e.From == origin {
		return e.To
	}
	if e.Bidirectional && e.To == origin {
		return e.From
	}
	return ""
}

// GetNeighbors returns the outgoing adjacency of a node: the set of node
// ids directly reachable, one per traversable edge.
func (g *Graph) GetNeighbors(id string) []string {
	out := make([]string, 0, len(g.adjacency[id]))
	for _, eid := range g.adjacency[id] {
		e := g.edges[eid]
		if to := g.edgeGoesFrom(e, id); to != "" {
			out = append(out, to)
		}
	}
	return out
}

// NetworkStats computes aggregate counts over the graph.
func (g *Graph) NetworkStats() NetworkStats {
	stats := NetworkStats{
		NodeCount:   len(g.nodes),
		EdgeCount:   len(g.edges),
		CountByKind: make(map[TrackKind]int),
	}
	if len(g.edges) == 0 {
		return stats
	}
	minLen, maxLen := -1.0, -1.0
	for _, e := range g.edges {
		stats.TotalLengthKm += e.LengthKm
		stats.CountByKind[e.Kind]++
		if minLen < 0 || e.LengthKm < minLen {
			minLen = e.LengthKm
		}
		if e.LengthKm > maxLen {
			maxLen = e.LengthKm
		}
	}
	stats.MinEdgeLengthKm = minLen
	stats.MaxEdgeLengthKm = maxLen
	stats.AvgEdgeLengthKm = stats.TotalLengthKm / float64(len(g.edges))
	return stats
}

// weightOf returns the scalar cost of traversing e under the given
// weight function.
func weightOf(e Edge, w Weight) float64 {
	switch w {
	case ByTravelTime:
		return e.TravelTimeHours()
	default:
		return e.LengthKm
	}
}

// --- Dijkstra ---

type pqItem struct {
	node string
	cost float64
	idx  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].idx, pq[j].idx = i, j }
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.idx = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// dijkstra returns the cheapest simple path from->to under weight w,
// optionally ignoring a set of excluded edge ids (used by Yen's
// algorithm and by route.Optimizer's "avoid these edges" contract).
// Grounded on katalvlaran-lvlath/graph/dijkstra.go's heap-of-nodeItem
// shape, generalized to two weight functions and an edge-exclusion set.
func (g *Graph) dijkstra(from, to string, w Weight, excludedNodes, excludedEdges map[string]bool) Path {
	if _, ok := g.nodes[from]; !ok {
		return Path{}
	}
	if _, ok := g.nodes[to]; !ok {
		return Path{}
	}
	if from == to {
		return Path{Nodes: []string{from}}
	}

	dist := map[string]float64{from: 0}
	prevEdge := map[string]string{}
	prevNode := map[string]string{}
	visited := map[string]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: from, cost: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == to {
			break
		}
		for _, eid := range g.adjacency[cur.node] {
			if excludedEdges[eid] {
				continue
			}
			e := g.edges[eid]
			next := g.edgeGoesFrom(e, cur.node)
			if next == "" || excludedNodes[next] {
				continue
			}
			nd := dist[cur.node] + weightOf(e, w)
			if d, ok := dist[next]; !ok || nd < d {
				dist[next] = nd
				prevEdge[next] = eid
				prevNode[next] = cur.node
				heap.Push(pq, &pqItem{node: next, cost: nd})
			}
		}
	}

	if !visited[to] {
		return Path{}
	}

	var nodes []string
	var edges []string
	n := to
	for n != from {
		nodes = append([]string{n}, nodes...)
		eid := prevEdge[n]
		edges = append([]string{eid}, edges...)
		n = prevNode[n]
	}
	nodes = append([]string{from}, nodes...)

	return g.materialize(nodes, edges)
}

// materialize computes TotalDistance/MinTravelTime for an explicit node
// and edge sequence, used both by dijkstra and by Yen's candidate
// assembly so "path feasibility" (spec §8 law) holds by construction.
func (g *Graph) materialize(nodes, edges []string) Path {
	p := Path{Nodes: nodes, Edges: edges}
	var hours float64
	for _, eid := range edges {
		e := g.edges[eid]
		p.TotalDistance += e.LengthKm
		hours += e.TravelTimeHours()
	}
	p.MinTravelTime = durationFromHours(hours)
	return p
}

// ShortestPath answers a single shortest-path query (spec §4.1).
func (g *Graph) ShortestPath(from, to string, w Weight) Path {
	return g.dijkstra(from, to, w, nil, nil)
}

// KShortestPaths implements Yen's algorithm: up to k loopless simple
// paths in non-decreasing cost order, deduplicated by node sequence.
// Bounds: 1 <= k <= 10.
func (g *Graph) KShortestPaths(from, to string, k int, w Weight) ([]Path, error) {
	if k < 1 || k > 10 {
		return nil, railerr.New(railerr.InvalidArgument, "railway.KShortestPaths")
	}
	base := g.ShortestPath(from, to, w)
	if base.Empty() {
		return nil, nil
	}

	seen := map[string]bool{pathKey(base.Nodes): true}
	result := []Path{base}
	var candidates []Path

	for len(result) < k {
		last := result[len(result)-1]
		for i := 0; i < len(last.Nodes)-1; i++ {
			spurNode := last.Nodes[i]
			rootNodes := append([]string{}, last.Nodes[:i+1]...)
			rootEdges := append([]string{}, last.Edges[:i]...)

			excludedEdges := map[string]bool{}
			for _, p := range result {
				if len(p.Nodes) > i && pathsShareRoot(p.Nodes[:i+1], rootNodes) {
					excludedEdges[p.Edges[i]] = true
				}
			}
			excludedNodes := map[string]bool{}
			for _, n := range rootNodes[:len(rootNodes)-1] {
				excludedNodes[n] = true
			}

			spur := g.dijkstra(spurNode, to, w, excludedNodes, excludedEdges)
			if spur.Empty() {
				continue
			}
			totalNodes := append(append([]string{}, rootNodes[:len(rootNodes)-1]...), spur.Nodes...)
			totalEdges := append(append([]string{}, rootEdges...), spur.Edges...)
			if hasDuplicateNode(totalNodes) {
				continue
			}
			cand := g.materialize(totalNodes, totalEdges)
			key := pathKey(cand.Nodes)
			if seen[key] {
				continue
			}
			candidates = append(candidates, cand)
		}

		if len(candidates) == 0 {
			break
		}
		sortPathsByCost(candidates, w)
		next := candidates[0]
		candidates = candidates[1:]
		seen[pathKey(next.Nodes)] = true
		result = append(result, next)
	}

	baseCost := costOf(base, w)
	for i := range result {
		result[i].Delta = costOf(result[i], w) - baseCost
	}
	return result, nil
}

func costOf(p Path, w Weight) float64 {
	if w == ByTravelTime {
		return p.MinTravelTime.Hours()
	}
	return p.TotalDistance
}

func sortPathsByCost(paths []Path, w Weight) {
	// simple insertion sort: candidate lists per Yen iteration are small
	for i := 1; i < len(paths); i++ {
		j := i
		for j > 0 && costOf(paths[j-1], w) > costOf(paths[j], w) {
			paths[j-1], paths[j] = paths[j], paths[j-1]
			j--
		}
	}
}

func pathKey(nodes []string) string {
	s := ""
	for _, n := range nodes {
		s += n + ">"
	}
	return s
}

func pathsShareRoot(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasDuplicateNode(nodes []string) bool {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}
