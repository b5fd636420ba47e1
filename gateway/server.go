// Package gateway wires every subsystem spec.md names into one running
// node: the shared RoutingTable, the link-state engine, the forwarding
// state machine, the liveness prober, and the mTLS HTTP listener. Server's
// Start/Stop/WaitForShutdown lifecycle mirrors lnd's server.go, which plays
// the same role of owning every subsystem's goroutines and tearing them
// down in reverse dependency order.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	goerrors "github.com/go-errors/errors"

	"github.com/ridh7/meshgate/certutil"
	"github.com/ridh7/meshgate/config"
	"github.com/ridh7/meshgate/discovery"
	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/health"
	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/topology"
	"github.com/ridh7/meshgate/transport"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

// shutdownTimeout bounds how long Stop waits for the HTTPS listener to
// drain in-flight requests before abandoning them.
const shutdownTimeout = 10 * time.Second

// Server owns every subsystem of one mesh gateway node.
type Server struct {
	cfg *config.Config

	table     *topology.RoutingTable
	engine    *discovery.Engine
	forwarder *forwarding.Forwarder
	prober    *health.Prober

	listener   net.Listener
	httpServer *http.Server

	quit chan struct{}
	wg   sync.WaitGroup
}

// New assembles a Server from its parsed config and loaded TLS material. It
// performs no I/O beyond what building the TCP listener requires.
func New(cfg *config.Config, material *certutil.Material) (*Server, error) {
	selfID := topology.NodeID(cfg.NodeID)

	peers := make([]topology.PeerInfo, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peers = append(peers, topology.PeerInfo{
			NodeID:  topology.NodeID(p.NodeID),
			Address: topology.PeerAddress(p.Address),
		})
	}
	table := topology.FromConfig(peers)

	client := transport.NewClient(material.ClientTLSConfig())
	engine := discovery.New(selfID, table, client)
	forwarder := forwarding.New(selfID, table, client)
	prober := health.New(table, client)

	handlers := transport.NewHandlers(selfID, cfg.ListenAddr(), time.Now(), table, forwarder, engine)
	router := transport.NewRouter(handlers)

	tlsConfig := material.ServerTLSConfig()
	listener, err := tls.Listen("tcp", cfg.ListenAddr(), tlsConfig)
	if err != nil {
		return nil, goerrors.Errorf("binding %s: %v", cfg.ListenAddr(), err)
	}

	return &Server{
		cfg:        cfg,
		table:      table,
		engine:     engine,
		forwarder:  forwarder,
		prober:     prober,
		listener:   listener,
		httpServer: &http.Server{Handler: router},
		quit:       make(chan struct{}),
	}, nil
}

// Start launches every background subsystem and begins accepting mTLS
// connections. It returns once the listener goroutine has been spawned; use
// WaitForShutdown to block until the node exits.
func (s *Server) Start() error {
	log.Infof("starting node %s on %s", s.cfg.NodeID, s.cfg.ListenAddr())

	s.engine.Start()
	s.prober.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Errorf("listener exited: %v", err)
		}
	}()

	return nil
}

// Stop tears down every subsystem in reverse order: HTTP listener first so
// no new work arrives, then the background loops that depend on the shared
// RoutingTable.
func (s *Server) Stop() error {
	log.Infof("stopping node %s", s.cfg.NodeID)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warnf("listener shutdown: %v", err)
	}

	s.prober.Stop()
	s.engine.Stop()

	close(s.quit)
	s.wg.Wait()
	return nil
}

// WaitForShutdown blocks until every subsystem goroutine this Server owns
// has exited.
func (s *Server) WaitForShutdown() {
	s.wg.Wait()
}
