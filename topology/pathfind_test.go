package topology

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildLine sets up the three-node line topology used throughout
// spec.md §8's scenarios: A-B, B-C, with A as the owning node.
func buildLine(t *testing.T) *RoutingTable {
	t.Helper()
	tbl := FromConfig([]PeerInfo{{NodeID: "B", Address: "127.0.0.1:9002"}})
	tbl.UpdatePeerStatus("B", StatusConnected)
	tbl.ProcessLSA(LSA{OriginID: "B", Neighbors: []NodeID{"A", "C"}, Sequence: 1})
	tbl.ProcessLSA(LSA{OriginID: "C", Neighbors: []NodeID{"B"}, Sequence: 1})
	return tbl
}

func TestFindRouteFromDirectHop(t *testing.T) {
	tbl := buildLine(t)
	path, ok := tbl.FindRouteFrom("A", "B")
	require.True(t, ok)
	require.Equal(t, Path{"B"}, path)
}

func TestFindRouteFromMultiHop(t *testing.T) {
	tbl := buildLine(t)
	path, ok := tbl.FindRouteFrom("A", "C")
	require.True(t, ok)
	require.Equal(t, Path{"B", "C"}, path)
}

func TestFindRouteFromNoRoute(t *testing.T) {
	tbl := FromConfig([]PeerInfo{{NodeID: "B", Address: "127.0.0.1:9002"}})
	tbl.UpdatePeerStatus("B", StatusConnected)

	_, ok := tbl.FindRouteFrom("A", "Z")
	require.False(t, ok)
}

func TestFindRouteFromTieBreaksLexicographically(t *testing.T) {
	// A connects directly to both B and D; both are one hop from the
	// destination Z, so the lexicographically smaller next hop (B) must
	// win the tie.
	tbl := FromConfig([]PeerInfo{
		{NodeID: "B", Address: "127.0.0.1:9002"},
		{NodeID: "D", Address: "127.0.0.1:9004"},
	})
	tbl.UpdatePeerStatus("B", StatusConnected)
	tbl.UpdatePeerStatus("D", StatusConnected)
	tbl.ProcessLSA(LSA{OriginID: "B", Neighbors: []NodeID{"A", "Z"}, Sequence: 1})
	tbl.ProcessLSA(LSA{OriginID: "D", Neighbors: []NodeID{"A", "Z"}, Sequence: 1})

	path, ok := tbl.FindRouteFrom("A", "Z")
	require.True(t, ok)
	require.Equal(t, Path{"B", "Z"}, path)
}

func TestFindRouteFromDisconnectedDirectPeerExcluded(t *testing.T) {
	tbl := FromConfig([]PeerInfo{{NodeID: "B", Address: "127.0.0.1:9002"}})
	// Never marked Connected: stays Unknown, so it must not be usable as
	// a first hop.
	_, ok := tbl.FindRouteFrom("A", "B")
	require.False(t, ok)
}
