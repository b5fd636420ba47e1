// Package forwarding implements the message-forwarding state machine of
// spec.md §4.3: next-hop selection over the shared RoutingTable, loop
// detection via route membership, and response propagation so the
// ingress-visible route always reflects the path actually traversed. It
// plays the role lnd's htlcswitch plays for payments, adapted from
// onion-routed HTLCs to plain hop-by-hop HTTP relay since spec.md has no
// flow control or multi-hop payment state to track.
package forwarding

import (
	"context"

	"github.com/btcsuite/btclog"

	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/topology"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

// Status is one of the four outcomes enumerated in spec.md §4.3.
type Status string

const (
	StatusDelivered    Status = "delivered"
	StatusNoRoute      Status = "no_route"
	StatusLoopDetected Status = "loop_detected"
	StatusFailed       Status = "failed"
)

// Response is the shape returned by both /message/send and
// /message/receive.
type Response struct {
	Status Status
	Route  []topology.NodeID
}

// Relayer performs the outbound POST to a peer's /message/receive
// endpoint over the shared mTLS client.
type Relayer interface {
	Relay(ctx context.Context, addr topology.PeerAddress, from, to topology.NodeID,
		content string, route []topology.NodeID) (Response, error)
}

// Forwarder is the per-node instance of the forwarding state machine.
type Forwarder struct {
	selfID  topology.NodeID
	table   *topology.RoutingTable
	relayer Relayer
}

// New builds a Forwarder for selfID, reading routes from table and
// relaying through relayer.
func New(selfID topology.NodeID, table *topology.RoutingTable, relayer Relayer) *Forwarder {
	return &Forwarder{selfID: selfID, table: table, relayer: relayer}
}

// Send implements the /message/send ingress path of spec.md §4.3.
func (f *Forwarder) Send(ctx context.Context, to topology.NodeID, content string) Response {
	path, ok := f.table.FindRouteFrom(f.selfID, to)
	if !ok {
		return Response{Status: StatusNoRoute, Route: []topology.NodeID{f.selfID}}
	}
	if len(path) == 0 {
		// to == self_id; see spec.md's "Open question — self-send
		// semantics" design note for the chosen behavior.
		return Response{Status: StatusDelivered, Route: []topology.NodeID{f.selfID}}
	}

	nextHop := path[0]
	peer, ok := f.table.GetPeer(nextHop)
	if !ok {
		return Response{Status: StatusNoRoute, Route: []topology.NodeID{f.selfID}}
	}

	resp, err := f.relayer.Relay(ctx, peer.Address, f.selfID, to, content,
		[]topology.NodeID{f.selfID})
	if err != nil {
		log.Warnf("send: relay to %s failed: %v", nextHop, err)
		return Response{Status: StatusFailed, Route: []topology.NodeID{f.selfID}}
	}
	return resp
}

// Receive implements the /message/receive relay path of spec.md §4.3.
func (f *Forwarder) Receive(ctx context.Context, from, to topology.NodeID,
	content string, route []topology.NodeID) Response {

	if to == f.selfID {
		return Response{Status: StatusDelivered, Route: appendNode(route, f.selfID)}
	}

	if containsNode(route, f.selfID) {
		return Response{Status: StatusLoopDetected, Route: route}
	}

	path, ok := f.table.FindRouteFrom(f.selfID, to)
	if !ok || len(path) == 0 {
		return Response{Status: StatusNoRoute, Route: route}
	}

	nextHop := path[0]
	peer, ok := f.table.GetPeer(nextHop)
	if !ok {
		return Response{Status: StatusNoRoute, Route: route}
	}

	extended := appendNode(route, f.selfID)
	resp, err := f.relayer.Relay(ctx, peer.Address, from, to, content, extended)
	if err != nil {
		log.Warnf("receive: relay to %s failed: %v", nextHop, err)
		return Response{Status: StatusFailed, Route: extended}
	}
	return resp
}

func appendNode(route []topology.NodeID, n topology.NodeID) []topology.NodeID {
	out := make([]topology.NodeID, len(route), len(route)+1)
	copy(out, route)
	return append(out, n)
}

func containsNode(route []topology.NodeID, n topology.NodeID) bool {
	for _, r := range route {
		if r == n {
			return true
		}
	}
	return false
}
