// Package feed implements the publisher and shared-memory consumer cores:
// the two processes that share the ring buffer over a shared-memory
// segment, plus the TCP fan-out the publisher drives independently.
package feed

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"

	"quotefeed/internal/clock"
	"quotefeed/internal/config"
	"quotefeed/internal/obs"
	"quotefeed/internal/quote"
	"quotefeed/internal/ring"
	"quotefeed/internal/shm"
	"quotefeed/internal/wire"
)

// subscriberQueueDepth bounds how many encoded lines a slow TCP subscriber
// may have outstanding before the fan-out starts dropping for it.
const subscriberQueueDepth = 256

// Publisher owns the cached clock, the shared-memory segment and ring it
// creates, and the TCP listener it fans quotes out over. The zero value is
// not usable; build one with NewPublisher.
type Publisher struct {
	clock     *clock.Cached
	segment   *shm.Segment
	ring      *ring.Ring
	server    *wire.Server
	fanout    *wire.Fanout
	metrics   *obs.Metrics
	generator *Generator
	cfg       config.Loaded

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPublisher creates the shared-memory segment, constructs the ring
// buffer in place at its base, and starts listening for TCP subscribers.
// Any failure tears down whatever was already acquired before returning.
func NewPublisher(cfg config.Loaded, generator *Generator, metrics *obs.Metrics) (*Publisher, error) {
	clk := clock.New(cfg.ClockInterval)

	// The spec's zero-fill-at-creation invariant (segment content is valid
	// only once; §3) and the single-producer non-goal mean any segment
	// already on disk under this name is left over from a prior run that
	// never reached Close (a crash) — clear it so Create always starts from
	// a fresh, zero-filled segment rather than reusing stale cursors/slots.
	if shm.SegmentExists(cfg.SegmentName) {
		if err := shm.RemoveSegment(cfg.SegmentName); err != nil {
			clk.Close()
			return nil, errors.Wrap(err, "remove stale segment")
		}
	}

	segment, err := shm.Create(cfg.SegmentName, ring.Size)
	if err != nil {
		clk.Close()
		return nil, errors.Wrap(err, "create segment")
	}

	r, err := ring.New(segment.Bytes())
	if err != nil {
		segment.Close()
		clk.Close()
		return nil, errors.Wrap(err, "construct ring")
	}

	server, err := wire.NewServer(cfg.ListenAddr)
	if err != nil {
		segment.Close()
		clk.Close()
		return nil, errors.Wrap(err, "new tcp server")
	}
	if err := server.Listen(); err != nil {
		segment.Close()
		clk.Close()
		return nil, errors.Wrap(err, "listen")
	}

	p := &Publisher{
		clock:     clk,
		segment:   segment,
		ring:      r,
		server:    server,
		fanout:    wire.NewFanout(subscriberQueueDepth, wire.OverflowDropNewest, metrics),
		metrics:   metrics,
		generator: generator,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
	}
	p.running.Store(true)
	return p, nil
}

// Run drives the accept loop and the hot tick loop until Close is called.
// It blocks the calling goroutine. If cfg.PinHotPath is set, it locks the
// calling goroutine to its current OS thread first, the idiomatic Go
// stand-in for pinning the hot path to a core (Go has no portable
// sched_setaffinity).
func (p *Publisher) Run() {
	if p.cfg.PinHotPath {
		runtime.LockOSThread()
	}

	p.wg.Add(1)
	go p.acceptLoop()

	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick is the hot path: timestamp, assemble, try_write-or-drop, and an
// independent fan-out publish. It never blocks on a subscriber.
func (p *Publisher) tick() {
	instrument, bid, ask := p.generator.Next()
	q := quote.New(instrument, bid, ask, p.clock.Now())

	if err := p.ring.TryWrite(q); err != nil {
		p.metrics.IncRingDrop()
	} else {
		p.metrics.IncPublished()
	}

	line, err := wire.EncodeLine(q)
	if err != nil {
		return
	}
	p.fanout.Publish(line)
}

func (p *Publisher) acceptLoop() {
	defer p.wg.Done()
	for {
		conn, err := p.server.Accept()
		if err != nil {
			return
		}
		p.fanout.Register(conn)
	}
}

// SubscriberCount returns the number of currently connected TCP subscribers.
func (p *Publisher) SubscriberCount() int {
	return p.fanout.Count()
}

// Metrics returns a snapshot of the publisher's counters.
func (p *Publisher) Metrics() obs.Snapshot {
	return p.metrics.Snapshot()
}

// Close stops accepting subscribers, closes every subscriber socket, and
// tears down the segment and cached clock. Close is idempotent.
func (p *Publisher) Close() error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}
	close(p.stopCh)
	p.server.Close()
	p.wg.Wait()
	p.fanout.Close()
	err := p.segment.Close()
	p.clock.Close()
	return err
}
