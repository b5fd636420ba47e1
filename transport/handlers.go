package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/gorilla/mux"

	"github.com/ridh7/meshgate/discovery"
	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/topology"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

// Handlers implements the six HTTP endpoints of spec.md §6 against the
// shared node state. It holds no state of its own beyond what it's wired to.
type Handlers struct {
	selfID     topology.NodeID
	listenAddr string
	startedAt  time.Time
	table      *topology.RoutingTable
	forwarder  *forwarding.Forwarder
	engine     *discovery.Engine
}

// NewHandlers builds the handler set for a single node. startedAt is used
// to compute GET /health's uptime_seconds.
func NewHandlers(selfID topology.NodeID, listenAddr string, startedAt time.Time,
	table *topology.RoutingTable, forwarder *forwarding.Forwarder, engine *discovery.Engine) *Handlers {

	return &Handlers{
		selfID:     selfID,
		listenAddr: listenAddr,
		startedAt:  startedAt,
		table:      table,
		forwarder:  forwarder,
		engine:     engine,
	}
}

// NewRouter wires h's methods onto the six endpoints spec.md §6 names,
// wrapped in the correlation-ID middleware.
func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(correlationMiddleware)

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/peer/info", h.handlePeerInfo).Methods(http.MethodGet)
	r.HandleFunc("/peers", h.handlePeers).Methods(http.MethodGet)
	r.HandleFunc("/message/send", h.handleMessageSend).Methods(http.MethodPost)
	r.HandleFunc("/message/receive", h.handleMessageReceive).Methods(http.MethodPost)
	r.HandleFunc("/topology/lsa", h.handleTopologyLSA).Methods(http.MethodPost)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	log.Debugf("request %s: health", requestID(r.Context()))

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		NodeID:        string(h.selfID),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

func (h *Handlers) handlePeerInfo(w http.ResponseWriter, r *http.Request) {
	log.Debugf("request %s: peer info", requestID(r.Context()))

	peers := h.table.GetAllPeers()
	nodeIDs := make([]string, len(peers))
	for i, p := range peers {
		nodeIDs[i] = string(p.NodeID)
	}

	writeJSON(w, http.StatusOK, PeerInfoResponse{
		NodeID:     string(h.selfID),
		ListenAddr: h.listenAddr,
		Peers:      nodeIDs,
		Version:    Version,
	})
}

func (h *Handlers) handlePeers(w http.ResponseWriter, r *http.Request) {
	log.Debugf("request %s: peers", requestID(r.Context()))

	writeJSON(w, http.StatusOK, peersResponseFrom(h.table.GetAllPeers()))
}

func (h *Handlers) handleMessageSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, "to is required")
		return
	}

	log.Debugf("request %s: send to %s", requestID(r.Context()), req.To)

	resp := h.forwarder.Send(r.Context(), topology.NodeID(req.To), req.Content)
	writeJSON(w, http.StatusOK, messageResponseFrom(resp))
}

func (h *Handlers) handleMessageReceive(w http.ResponseWriter, r *http.Request) {
	var req ReceiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.To == "" || req.From == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	log.Debugf("request %s: relay from %s to %s", requestID(r.Context()), req.From, req.To)

	resp := h.forwarder.Receive(r.Context(), topology.NodeID(req.From), topology.NodeID(req.To),
		req.Content, nodeIDRoute(req.Route))
	writeJSON(w, http.StatusOK, messageResponseFrom(resp))
}

func (h *Handlers) handleTopologyLSA(w http.ResponseWriter, r *http.Request) {
	var req LSARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.NodeID == "" {
		writeError(w, http.StatusBadRequest, "node_id is required")
		return
	}

	log.Debugf("request %s: lsa from %s", requestID(r.Context()), req.NodeID)

	if h.engine.HandleLSA(req.toLSA()) {
		writeJSON(w, http.StatusOK, LSAResponse{Status: "accepted"})
		return
	}
	writeJSON(w, http.StatusOK, LSAResponse{Status: "ignored"})
}
