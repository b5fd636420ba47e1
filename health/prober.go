// Package health implements the peer liveness prober of spec.md §4.4: a
// periodic per-peer GET /health sweep that flips RoutingTable peer status
// between Connected and Disconnected. It is grounded on lnd's
// healthcheck.Observation/Config pattern (periodic retry-bounded checks
// feeding a shared state flag) but does not import lnd/healthcheck itself:
// that package's real API is built around chain.Conn.Ping-style backend
// checks with per-check retry/backoff tuning that has no analogue here, and
// SPEC_FULL.md §2 documents the decision to hand-roll this instead directly
// on top of lnd/ticker, which is the piece that does transfer cleanly.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/topology"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

const (
	// DefaultInterval is how often every peer is probed, per spec.md §4.4.
	DefaultInterval = 15 * time.Second

	// DefaultWarmup delays the first sweep to give outbound TLS dials a
	// moment after process startup.
	DefaultWarmup = 10 * time.Second

	// DefaultPeerTimeout bounds a single peer's probe.
	DefaultPeerTimeout = 5 * time.Second
)

// Pinger performs the actual GET /health round trip against a peer.
type Pinger interface {
	Ping(ctx context.Context, addr topology.PeerAddress) error
}

// Prober runs the periodic sweep and updates table accordingly.
type Prober struct {
	table  *topology.RoutingTable
	pinger Pinger

	interval    time.Duration
	warmup      time.Duration
	peerTimeout time.Duration

	quit chan struct{}
	wg   sync.WaitGroup
}

// New builds a Prober over table, probing peers through pinger.
func New(table *topology.RoutingTable, pinger Pinger) *Prober {
	return &Prober{
		table:       table,
		pinger:      pinger,
		interval:    DefaultInterval,
		warmup:      DefaultWarmup,
		peerTimeout: DefaultPeerTimeout,
		quit:        make(chan struct{}),
	}
}

// Start launches the periodic sweep loop. Safe to call once.
func (p *Prober) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop signals the sweep loop to exit and waits for it.
func (p *Prober) Stop() {
	close(p.quit)
	p.wg.Wait()
}

func (p *Prober) loop() {
	defer p.wg.Done()

	select {
	case <-time.After(p.warmup):
	case <-p.quit:
		return
	}

	t := ticker.New(p.interval)
	t.Resume()
	defer t.Stop()

	p.sweep()

	for {
		select {
		case <-t.Ticks():
			p.sweep()
		case <-p.quit:
			return
		}
	}
}

// sweep probes every known peer concurrently, one goroutine each, so one
// unresponsive peer cannot delay the rest of the round.
func (p *Prober) sweep() {
	peers := p.table.GetAllPeers()

	var wg sync.WaitGroup
	for _, peer := range peers {
		peer := peer
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.probeOne(peer)
		}()
	}
	wg.Wait()
}

func (p *Prober) probeOne(peer topology.PeerInfo) {
	ctx, cancel := context.WithTimeout(context.Background(), p.peerTimeout)
	defer cancel()

	err := p.pinger.Ping(ctx, peer.Address)
	if err != nil {
		if peer.Status == topology.StatusConnected {
			log.Infof("peer %s went unreachable: %v", peer.NodeID, err)
		}
		p.table.UpdatePeerStatus(peer.NodeID, topology.StatusDisconnected)
		return
	}

	if peer.Status != topology.StatusConnected {
		log.Infof("peer %s is now reachable", peer.NodeID)
	}
	p.table.UpdatePeerStatus(peer.NodeID, topology.StatusConnected)
}
