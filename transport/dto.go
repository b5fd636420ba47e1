// Package transport implements the HTTPS/mTLS wire surface of spec.md §6:
// the six JSON endpoints, the gorilla/mux router wiring them, and the mTLS
// client used to call them on peers. It is grounded on lnd's lnrpc request/
// response proto message shapes translated to plain JSON structs, since
// spec.md calls for JSON over HTTP rather than gRPC.
package transport

import (
	"time"

	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/topology"
)

// Version is the gateway's build version, reported on GET /peer/info.
var Version = "0.1.0"

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	NodeID        string `json:"node_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// PeerInfoResponse answers GET /peer/info: this node's own identity and the
// node_id of every configured direct peer.
type PeerInfoResponse struct {
	NodeID     string   `json:"node_id"`
	ListenAddr string   `json:"listen_addr"`
	Peers      []string `json:"peers"`
	Version    string   `json:"version"`
}

// PeerView is one entry of the PeerInfo described in spec.md §3.
type PeerView struct {
	NodeID   string  `json:"node_id"`
	Address  string  `json:"address"`
	Status   string  `json:"status"`
	LastSeen *string `json:"last_seen"`
}

func peerViewFrom(p topology.PeerInfo) PeerView {
	v := PeerView{
		NodeID:  string(p.NodeID),
		Address: string(p.Address),
		Status:  p.Status.String(),
	}
	if !p.LastSeen.IsZero() {
		formatted := p.LastSeen.UTC().Format(time.RFC3339)
		v.LastSeen = &formatted
	}
	return v
}

// PeersResponse answers GET /peers.
type PeersResponse struct {
	Peers []PeerView `json:"peers"`
}

func peersResponseFrom(peers []topology.PeerInfo) PeersResponse {
	views := make([]PeerView, 0, len(peers))
	for _, p := range peers {
		views = append(views, peerViewFrom(p))
	}
	return PeersResponse{Peers: views}
}

// SendRequest is the body of POST /message/send.
type SendRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// ReceiveRequest is the body of POST /message/receive.
type ReceiveRequest struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Content string   `json:"content"`
	Route   []string `json:"route"`
}

// MessageResponse is the shared response shape for /message/send and
// /message/receive.
type MessageResponse struct {
	Status string   `json:"status"`
	Route  []string `json:"route"`
}

func messageResponseFrom(r forwarding.Response) MessageResponse {
	route := make([]string, len(r.Route))
	for i, n := range r.Route {
		route[i] = string(n)
	}
	return MessageResponse{Status: string(r.Status), Route: route}
}

func nodeIDRoute(route []string) []topology.NodeID {
	out := make([]topology.NodeID, len(route))
	for i, r := range route {
		out[i] = topology.NodeID(r)
	}
	return out
}

// LSARequest is the body of POST /topology/lsa. Timestamp is a pointer so an
// absent value serializes as JSON null, per spec.md §6; timestamps are
// informational only and never used for ordering (spec.md §9's "LSA
// timestamp trust" open question).
type LSARequest struct {
	NodeID    string     `json:"node_id"`
	Neighbors []string   `json:"neighbors"`
	Sequence  uint64     `json:"sequence"`
	Timestamp *time.Time `json:"timestamp"`
}

func (r LSARequest) toLSA() topology.LSA {
	neighbors := make([]topology.NodeID, len(r.Neighbors))
	for i, n := range r.Neighbors {
		neighbors[i] = topology.NodeID(n)
	}
	lsa := topology.LSA{
		OriginID:  topology.NodeID(r.NodeID),
		Neighbors: neighbors,
		Sequence:  r.Sequence,
	}
	if r.Timestamp != nil {
		lsa.Timestamp = *r.Timestamp
	}
	return lsa
}

func lsaRequestFrom(lsa topology.LSA) LSARequest {
	neighbors := make([]string, len(lsa.Neighbors))
	for i, n := range lsa.Neighbors {
		neighbors[i] = string(n)
	}
	req := LSARequest{
		NodeID:    string(lsa.OriginID),
		Neighbors: neighbors,
		Sequence:  lsa.Sequence,
	}
	if !lsa.Timestamp.IsZero() {
		ts := lsa.Timestamp
		req.Timestamp = &ts
	}
	return req
}

// LSAResponse answers POST /topology/lsa.
type LSAResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
