package topology

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTable() *RoutingTable {
	return FromConfig([]PeerInfo{
		{NodeID: "B", Address: "127.0.0.1:9002"},
		{NodeID: "C", Address: "127.0.0.1:9003"},
	})
}

func TestPeersStartUnknown(t *testing.T) {
	tbl := newTestTable()
	p, ok := tbl.GetPeer("B")
	require.True(t, ok)
	require.Equal(t, StatusUnknown, p.Status)
	require.True(t, p.LastSeen.IsZero())
}

func TestUpdatePeerStatusStampsLastSeenOnlyOnConnect(t *testing.T) {
	tbl := newTestTable()

	tbl.UpdatePeerStatus("B", StatusConnected)
	p, _ := tbl.GetPeer("B")
	require.Equal(t, StatusConnected, p.Status)
	require.False(t, p.LastSeen.IsZero())

	seenAt := p.LastSeen
	tbl.UpdatePeerStatus("B", StatusDisconnected)
	p, _ = tbl.GetPeer("B")
	require.Equal(t, StatusDisconnected, p.Status)
	require.Equal(t, seenAt, p.LastSeen)
}

func TestUpdatePeerStatusUnknownPeerIsNoop(t *testing.T) {
	tbl := newTestTable()
	tbl.UpdatePeerStatus("Z", StatusConnected)
	_, ok := tbl.GetPeer("Z")
	require.False(t, ok)
}

func TestGenerateLSASequenceStrictlyIncreases(t *testing.T) {
	tbl := newTestTable()
	tbl.UpdatePeerStatus("B", StatusConnected)

	first := tbl.GenerateLSA("A")
	second := tbl.GenerateLSA("A")

	require.Equal(t, uint64(1), first.Sequence)
	require.Equal(t, uint64(2), second.Sequence)
	require.Less(t, first.Sequence, second.Sequence)
}

func TestGenerateLSAOnlyIncludesConnectedPeers(t *testing.T) {
	tbl := newTestTable()
	tbl.UpdatePeerStatus("B", StatusConnected)
	tbl.UpdatePeerStatus("C", StatusDisconnected)

	lsa := tbl.GenerateLSA("A")
	require.Equal(t, []NodeID{"B"}, lsa.Neighbors)
}

func TestProcessLSADedupAndMonotonicity(t *testing.T) {
	tbl := newTestTable()

	accepted := tbl.ProcessLSA(LSA{OriginID: "X", Sequence: 5})
	require.True(t, accepted)

	accepted = tbl.ProcessLSA(LSA{OriginID: "X", Sequence: 5})
	require.False(t, accepted, "duplicate sequence must be rejected")

	accepted = tbl.ProcessLSA(LSA{OriginID: "X", Sequence: 4})
	require.False(t, accepted, "stale sequence must be rejected")

	accepted = tbl.ProcessLSA(LSA{OriginID: "X", Sequence: 6})
	require.True(t, accepted, "higher sequence must be accepted")
}

func TestGetConnectedPeersExcludesOthers(t *testing.T) {
	tbl := newTestTable()
	tbl.UpdatePeerStatus("B", StatusConnected)

	connected := tbl.GetConnectedPeers()
	require.Len(t, connected, 1)
	require.Equal(t, NodeID("B"), connected[0].NodeID)
}

func TestFindRouteFromSelfIsEmptyPath(t *testing.T) {
	tbl := newTestTable()
	path, ok := tbl.FindRouteFrom("A", "A")
	require.True(t, ok)
	require.Empty(t, path)
}

func TestFindRouteFromUnreachableIsNotOk(t *testing.T) {
	tbl := newTestTable()
	_, ok := tbl.FindRouteFrom("A", "Z")
	require.False(t, ok)
}
