// Package discovery implements the link-state protocol described in
// spec.md §4.2: periodic LSA origination and controlled, duplicate-
// suppressed flooding. It is grounded on lnd's discovery.AuthenticatedGossiper
// (periodic announcement rebroadcast, validate-then-forward handling of
// incoming gossip) with the per-message signature checks in
// discovery/validation.go dropped: spec.md's trust model is the mTLS
// channel itself, not per-message signatures, so the only check an
// incoming LSA goes through is RoutingTable.ProcessLSA's sequence test.
package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/queue"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/topology"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger, matching lnd's per-package
// UseLogger convention.
func UseLogger(logger btclog.Logger) { log = logger }

const (
	// DefaultOriginationInterval is how often this node originates a
	// fresh LSA, per spec.md §4.2.
	DefaultOriginationInterval = 30 * time.Second

	// DefaultWarmup delays the first origination after Start. It is
	// shorter than health.DefaultWarmup, so the first LSA is generated
	// before the first health sweep has marked any peer Connected.
	DefaultWarmup = 5 * time.Second

	// floodFanout bounds how many concurrent flood POSTs run at once;
	// spec.md only requires that one slow peer not block the others,
	// not unbounded concurrency.
	floodFanout = 32
)

// Sender is the subset of the mTLS client factory the link-state engine
// needs: posting an LSA to one peer's /topology/lsa endpoint.
type Sender interface {
	PostLSA(ctx context.Context, addr topology.PeerAddress, lsa topology.LSA) error
}

// Engine runs LSA origination and owns ingestion/flooding of received
// LSAs. It shares the RoutingTable with every other subsystem.
type Engine struct {
	selfID topology.NodeID
	table  *topology.RoutingTable
	sender Sender

	originationInterval time.Duration
	warmup              time.Duration

	quit chan struct{}
	wg   sync.WaitGroup
}

// New builds a link-state engine for selfID over table, dispatching
// outbound LSAs through sender.
func New(selfID topology.NodeID, table *topology.RoutingTable, sender Sender) *Engine {
	return &Engine{
		selfID:              selfID,
		table:               table,
		sender:              sender,
		originationInterval: DefaultOriginationInterval,
		warmup:              DefaultWarmup,
		quit:                make(chan struct{}),
	}
}

// Start launches the periodic origination loop. Safe to call once.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.originationLoop()
}

// Stop signals the origination loop to exit and waits for it.
func (e *Engine) Stop() {
	close(e.quit)
	e.wg.Wait()
}

func (e *Engine) originationLoop() {
	defer e.wg.Done()

	select {
	case <-time.After(e.warmup):
	case <-e.quit:
		return
	}

	t := ticker.New(e.originationInterval)
	t.Resume()
	defer t.Stop()

	e.originate()

	for {
		select {
		case <-t.Ticks():
			e.originate()
		case <-e.quit:
			return
		}
	}
}

// originate generates a fresh LSA and floods it to every currently
// Connected peer, one goroutine per peer so a single slow peer can't
// delay the others, per spec.md §4.2.
func (e *Engine) originate() {
	lsa := e.table.GenerateLSA(e.selfID)
	peers := e.table.GetConnectedPeers()

	var wg sync.WaitGroup
	for _, p := range peers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.sender.PostLSA(ctx, p.Address, lsa); err != nil {
				log.Warnf("originate: failed sending LSA to %s: %v", p.NodeID, err)
			}
		}()
	}
	wg.Wait()
}

// HandleLSA implements the /topology/lsa ingestion path of spec.md §4.2:
// accept-or-ignore based on ProcessLSA, then (on accept) asynchronously
// flood to every Connected peer other than the LSA's origin.
//
// Returns true when the LSA was accepted (the handler should respond
// "accepted"); false means "ignored".
func (e *Engine) HandleLSA(lsa topology.LSA) bool {
	accepted := e.table.ProcessLSA(lsa)
	if !accepted {
		return false
	}

	go e.flood(lsa)
	return true
}

// floodJob is one (peer, lsa) forwarding task queued by flood.
type floodJob struct {
	peer topology.PeerInfo
	lsa  topology.LSA
}

// flood fire-and-forgets lsa to every Connected peer other than its
// origin. Jobs are buffered through a queue.ConcurrentQueue and drained by
// a fixed pool of floodFanout workers, so a peer set far larger than the
// worker pool still can't spawn an unbounded number of in-flight requests
// at once; this is the same producer/worker split the gossiper uses to
// queue announcements for processing without blocking the caller.
func (e *Engine) flood(lsa topology.LSA) {
	peers := e.table.GetConnectedPeers()

	jobs := queue.NewConcurrentQueue(floodFanout)
	jobs.Start()

	var wg sync.WaitGroup
	for i := 0; i < floodFanout; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs.ChanOut() {
				job := item.(floodJob)
				e.sendFlood(job)
			}
		}()
	}

	for _, p := range peers {
		if p.NodeID == lsa.OriginID {
			continue
		}
		jobs.ChanIn() <- floodJob{peer: p, lsa: lsa}
	}
	jobs.Stop()
	wg.Wait()
}

func (e *Engine) sendFlood(job floodJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.sender.PostLSA(ctx, job.peer.Address, job.lsa); err != nil {
		log.Warnf("flood: failed forwarding LSA from %s to %s: %v",
			job.lsa.OriginID, job.peer.NodeID, err)
	}
}
