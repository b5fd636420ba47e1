package discovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridh7/meshgate/topology"
)

type fakeSender struct {
	mu  sync.Mutex
	got []topology.PeerAddress
}

func (f *fakeSender) PostLSA(_ context.Context, addr topology.PeerAddress, _ topology.LSA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, addr)
	return nil
}

func (f *fakeSender) addresses() []topology.PeerAddress {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]topology.PeerAddress, len(f.got))
	copy(out, f.got)
	return out
}

func TestHandleLSAAcceptsFirstAndFloodsToOthers(t *testing.T) {
	table := topology.FromConfig([]topology.PeerInfo{
		{NodeID: "B", Address: "127.0.0.1:9002"},
		{NodeID: "C", Address: "127.0.0.1:9003"},
	})
	table.UpdatePeerStatus("B", topology.StatusConnected)
	table.UpdatePeerStatus("C", topology.StatusConnected)

	sender := &fakeSender{}
	e := New("A", table, sender)

	accepted := e.HandleLSA(topology.LSA{OriginID: "B", Sequence: 1})
	require.True(t, accepted)

	// HandleLSA floods in the background; wait for that flood to land.
	require.Eventually(t, func() bool { return len(sender.addresses()) > 0 },
		2*time.Second, 10*time.Millisecond)
	require.ElementsMatch(t, []topology.PeerAddress{"127.0.0.1:9003"}, sender.addresses())
}

func TestHandleLSARejectsDuplicate(t *testing.T) {
	table := topology.FromConfig(nil)
	sender := &fakeSender{}
	e := New("A", table, sender)

	require.True(t, e.HandleLSA(topology.LSA{OriginID: "B", Sequence: 1}))
	require.False(t, e.HandleLSA(topology.LSA{OriginID: "B", Sequence: 1}))
}

func TestOriginateGeneratesAndSendsToConnectedPeersOnly(t *testing.T) {
	table := topology.FromConfig([]topology.PeerInfo{
		{NodeID: "B", Address: "127.0.0.1:9002"},
		{NodeID: "C", Address: "127.0.0.1:9003"},
	})
	table.UpdatePeerStatus("B", topology.StatusConnected)

	sender := &fakeSender{}
	e := New("A", table, sender)
	e.originate()

	require.Equal(t, []topology.PeerAddress{"127.0.0.1:9002"}, sender.addresses())
}
