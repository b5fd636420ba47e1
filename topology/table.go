package topology

import (
	"sort"
	"sync"
	"time"
)

// RoutingTable is the single source of truth for this node's view of the
// mesh: its own direct peers and the most recent LSA received from every
// origin. All mutating operations are serialized by mu; readers may run
// concurrently with one another. No operation here performs network I/O,
// so the lock is never held across an await point.
type RoutingTable struct {
	mu sync.RWMutex

	peers map[NodeID]PeerInfo
	lsdb  map[NodeID]LSA

	ownSequence uint64
}

// FromConfig constructs a RoutingTable with the given direct peers, all
// starting in StatusUnknown, matching spec.md §3's initial-value invariant.
func FromConfig(peers []PeerInfo) *RoutingTable {
	t := &RoutingTable{
		peers: make(map[NodeID]PeerInfo, len(peers)),
		lsdb:  make(map[NodeID]LSA),
	}
	for _, p := range peers {
		p.Status = StatusUnknown
		t.peers[p.NodeID] = p
	}
	return t
}

// AddPeer upserts a direct peer.
func (t *RoutingTable) AddPeer(p PeerInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[p.NodeID] = p
}

// RemovePeer deletes a direct peer. A no-op if the peer is unknown.
func (t *RoutingTable) RemovePeer(id NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, id)
}

// UpdatePeerStatus mutates a direct peer's status, stamping LastSeen when
// the new status is StatusConnected. A no-op if id is not a known peer.
func (t *RoutingTable) UpdatePeerStatus(id NodeID, status PeerStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[id]
	if !ok {
		return
	}

	p.Status = status
	if status == StatusConnected {
		p.LastSeen = time.Now()
	}
	t.peers[id] = p
}

// MarkPeerSeen stamps LastSeen without touching status.
func (t *RoutingTable) MarkPeerSeen(id NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[id]
	if !ok {
		return
	}
	p.LastSeen = time.Now()
	t.peers[id] = p
}

// GetPeer returns a snapshot of one direct peer.
func (t *RoutingTable) GetPeer(id NodeID) (PeerInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.peers[id]
	return p, ok
}

// GetAllPeers returns a snapshot of every configured direct peer.
func (t *RoutingTable) GetAllPeers() []PeerInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]PeerInfo, 0, len(t.peers))
	for _, p := range t.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// GetConnectedPeers returns a snapshot of the direct peers currently in
// StatusConnected.
func (t *RoutingTable) GetConnectedPeers() []PeerInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []PeerInfo
	for _, p := range t.peers {
		if p.Status == StatusConnected {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// GenerateLSA increments the node's own sequence counter and snapshots its
// currently-Connected direct peers as the LSA's neighbor set, all under a
// single exclusive hold so the returned sequence is unique and strictly
// greater than any previously generated one.
func (t *RoutingTable) GenerateLSA(selfID NodeID) LSA {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ownSequence++

	var neighbors []NodeID
	for _, p := range t.peers {
		if p.Status == StatusConnected {
			neighbors = append(neighbors, p.NodeID)
		}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })

	lsa := LSA{
		OriginID:  selfID,
		Neighbors: neighbors,
		Sequence:  t.ownSequence,
		Timestamp: time.Now(),
	}
	t.lsdb[selfID] = lsa
	return lsa
}

// ProcessLSA accepts lsa iff no prior LSA exists for its origin, or the
// new sequence strictly exceeds the stored one. Ties are rejected. Returns
// whether the LSA was accepted and stored.
func (t *RoutingTable) ProcessLSA(lsa LSA) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.lsdb[lsa.OriginID]
	if ok && lsa.Sequence <= existing.Sequence {
		return false
	}

	t.lsdb[lsa.OriginID] = lsa
	return true
}

// snapshot captures a self-consistent view of the peer map and LSDB under
// a single lock acquisition, for Dijkstra to run over without racing
// concurrent writers.
func (t *RoutingTable) snapshot() (peers map[NodeID]PeerInfo, lsdb map[NodeID]LSA) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	peers = make(map[NodeID]PeerInfo, len(t.peers))
	for k, v := range t.peers {
		peers[k] = v
	}
	lsdb = make(map[NodeID]LSA, len(t.lsdb))
	for k, v := range t.lsdb {
		lsdb[k] = v
	}
	return peers, lsdb
}

// FindRouteFrom computes the shortest (by hop count) path from source to
// destination over the union of source's currently-Connected direct peers
// and every edge recorded in the LSDB. See pathfind.go for the algorithm.
func (t *RoutingTable) FindRouteFrom(source, destination NodeID) (Path, bool) {
	peers, lsdb := t.snapshot()
	return shortestPath(source, destination, peers, lsdb)
}
