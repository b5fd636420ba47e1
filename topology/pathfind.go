package topology

import "container/heap"

// shortestPath runs Dijkstra with unit edge weights over the union graph
// described in spec.md §4.1: source's currently-Connected direct peers,
// plus every (origin -> neighbor) edge recorded in lsdb. Ties on distance
// are broken lexicographically by NodeID so routes are deterministic,
// following spec.md's Design Notes on reproducible tests.
//
// peers is the routing table owner's direct peer map; its Connected entries
// are attached as edges of source whatever source is, which matches the
// real topology only when source is the table's own node (the only case the
// forwarding engine ever exercises, per spec.md §4.3's find_route_from(
// self_id, to) call sites).
func shortestPath(source, destination NodeID, peers map[NodeID]PeerInfo, lsdb map[NodeID]LSA) (Path, bool) {
	if source == destination {
		return Path{}, true
	}

	adjacency := buildAdjacency(source, peers, lsdb)

	dist := map[NodeID]int{source: 0}
	prev := map[NodeID]NodeID{}
	visited := map[NodeID]bool{}

	pq := &priorityQueue{{node: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node == destination {
			break
		}

		neighbors := make([]NodeID, 0, len(adjacency[cur.node]))
		for n := range adjacency[cur.node] {
			neighbors = append(neighbors, n)
		}
		sortNodeIDs(neighbors)

		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			alt := dist[cur.node] + 1
			if existing, known := dist[n]; !known || alt < existing {
				dist[n] = alt
				prev[n] = cur.node
				heap.Push(pq, pqItem{node: n, dist: alt})
			}
		}
	}

	if _, ok := dist[destination]; !ok {
		return nil, false
	}

	var path Path
	for at := destination; at != source; at = prev[at] {
		path = append(Path{at}, path...)
	}
	return path, true
}

func buildAdjacency(source NodeID, peers map[NodeID]PeerInfo, lsdb map[NodeID]LSA) map[NodeID]map[NodeID]struct{} {
	adj := make(map[NodeID]map[NodeID]struct{})
	addEdge := func(a, b NodeID) {
		if adj[a] == nil {
			adj[a] = make(map[NodeID]struct{})
		}
		adj[a][b] = struct{}{}
		if adj[b] == nil {
			adj[b] = make(map[NodeID]struct{})
		}
		adj[b][a] = struct{}{}
	}

	for _, p := range peers {
		if p.Status == StatusConnected {
			addEdge(source, p.NodeID)
		}
	}

	for origin, lsa := range lsdb {
		for _, n := range lsa.Neighbors {
			addEdge(origin, n)
		}
	}

	return adj
}

func sortNodeIDs(ids []NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

type pqItem struct {
	node NodeID
	dist int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
