package feed

import (
	"time"

	"github.com/yanun0323/errors"

	"quotefeed/internal/clock"
	"quotefeed/internal/config"
	"quotefeed/internal/obs"
	"quotefeed/internal/quote"
	"quotefeed/internal/ring"
	"quotefeed/internal/shm"
)

// ShmConsumer attaches to the publisher's shared-memory segment and polls
// its ring buffer; the only shared state it writes is the ring's read
// cursor. The zero value is not usable; build one with
// NewShmConsumer.
type ShmConsumer struct {
	segment *shm.Segment
	ring    *ring.Ring
	clock   *clock.Cached
	metrics *obs.Metrics
	cfg     config.Loaded
}

// NewShmConsumer attaches to an existing segment created by a Publisher
// with the same SegmentName. It fails if the segment is missing or its
// size disagrees with ring.Size.
func NewShmConsumer(cfg config.Loaded, metrics *obs.Metrics) (*ShmConsumer, error) {
	segment, err := shm.Attach(cfg.SegmentName, ring.Size)
	if err != nil {
		return nil, errors.Wrap(err, "attach segment")
	}

	r, err := ring.New(segment.Bytes())
	if err != nil {
		segment.Close()
		return nil, errors.Wrap(err, "construct ring")
	}

	return &ShmConsumer{
		segment: segment,
		ring:    r,
		clock:   clock.New(cfg.ClockInterval),
		metrics: metrics,
		cfg:     cfg,
	}, nil
}

// Handler receives each quote consumed from the ring along with its
// publish-to-consume latency.
type Handler func(q quote.MarketQuote, latency time.Duration)

// Run polls the ring until stop is closed, calling handle for every quote
// it successfully reads. On a run of empty observations it spins up to
// cfg.SpinIterations times before sleeping cfg.SpinSleep, so an idle
// producer never pins a core at 100%.
func (c *ShmConsumer) Run(stop <-chan struct{}, handle Handler) {
	empties := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		q, err := c.ring.TryRead()
		if err != nil {
			empties++
			if empties >= c.cfg.SpinIterations {
				time.Sleep(c.cfg.SpinSleep)
				empties = 0
			}
			continue
		}

		empties = 0
		latency := time.Duration(c.clock.Now() - q.TimestampNS)
		c.metrics.ObserveShmLatency(latency)
		if handle != nil {
			handle(q, latency)
		}
	}
}

// AvailableForRead reports how many unread quotes are currently in the
// ring, for diagnostics and the end-to-end test scenarios.
func (c *ShmConsumer) AvailableForRead() uint64 {
	return c.ring.AvailableForRead()
}

// Close releases the segment mapping without destroying the segment; the
// publisher retains sole ownership of the segment's lifecycle.
func (c *ShmConsumer) Close() error {
	c.clock.Close()
	if err := c.segment.Close(); err != nil {
		return errors.Wrap(err, "close segment")
	}
	return nil
}
