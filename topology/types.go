// Package topology holds the gateway's shared routing state: the direct
// peer table and the link-state database, plus the Dijkstra pathfinding
// that runs over their union. It is an in-memory, hop-count-only graph
// behind a sync.RWMutex with snapshot-based reads, since spec.md explicitly
// rules out persistence and weighted link costs.
package topology

import "time"

// NodeID is a non-empty opaque identifier, unique per gateway.
type NodeID string

// PeerAddress is a host:port pair in transport form; it never includes a
// scheme.
type PeerAddress string

// PeerStatus is the liveness state of a direct peer.
type PeerStatus int

const (
	// StatusUnknown is the initial status of every configured peer.
	StatusUnknown PeerStatus = iota
	StatusConnected
	StatusDisconnected
)

func (s PeerStatus) String() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// PeerInfo describes one direct, configured peer. Callers always receive
// copies; the RoutingTable is the sole owner of the canonical value.
type PeerInfo struct {
	NodeID   NodeID
	Address  PeerAddress
	Status   PeerStatus
	LastSeen time.Time
}

// LSA is a link-state advertisement: the set of peers origin considered
// Connected at the moment it was generated, tagged with a strictly
// monotonic per-origin sequence number.
type LSA struct {
	OriginID  NodeID
	Neighbors []NodeID
	Sequence  uint64
	Timestamp time.Time
}

// Path is an ordered, destination-inclusive list of hops excluding the
// source node that requested it.
type Path []NodeID
