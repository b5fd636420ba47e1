package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/topology"
)

func TestLSARequestRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	lsa := topology.LSA{
		OriginID:  "A",
		Neighbors: []topology.NodeID{"B", "C"},
		Sequence:  7,
		Timestamp: now,
	}

	req := lsaRequestFrom(lsa)
	require.Equal(t, "A", req.NodeID)
	require.Equal(t, []string{"B", "C"}, req.Neighbors)
	require.NotNil(t, req.Timestamp)

	back := req.toLSA()
	require.Equal(t, lsa.OriginID, back.OriginID)
	require.Equal(t, lsa.Neighbors, back.Neighbors)
	require.Equal(t, lsa.Sequence, back.Sequence)
	require.True(t, lsa.Timestamp.Equal(back.Timestamp))
}

func TestLSARequestOmitsTimestampWhenZero(t *testing.T) {
	req := lsaRequestFrom(topology.LSA{OriginID: "A", Sequence: 1})
	require.Nil(t, req.Timestamp)
}

func TestMessageResponseFromPreservesRouteOrder(t *testing.T) {
	resp := forwarding.Response{
		Status: forwarding.StatusDelivered,
		Route:  []topology.NodeID{"A", "B", "C"},
	}

	dto := messageResponseFrom(resp)
	require.Equal(t, "delivered", dto.Status)
	require.Equal(t, []string{"A", "B", "C"}, dto.Route)

	require.Equal(t, resp.Route, nodeIDRoute(dto.Route))
}

func TestPeerViewOmitsLastSeenWhenZero(t *testing.T) {
	view := peerViewFrom(topology.PeerInfo{NodeID: "B", Address: "127.0.0.1:9002"})
	require.Equal(t, "Unknown", view.Status)
	require.Nil(t, view.LastSeen)
}
