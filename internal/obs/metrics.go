// Package obs collects lightweight runtime counters and latency stats for
// the publisher and both consumers, adapted from the trading engine's
// observability layer to this feed's transports.
package obs

import (
	"sync/atomic"
	"time"
)

// Metrics aggregates the counters and latency statistics (count, min, max,
// average) exposed by the
// quote feed's three processes. The zero value is ready to use.
type Metrics struct {
	published   uint64
	ringDrops   uint64
	fanoutDrops uint64
	malformed   uint64

	shmLatency Latency
	tcpLatency Latency
}

// Latency aggregates duration samples in nanoseconds using the same
// lock-free CAS-based min/max tracking as the rest of the fleet.
type Latency struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of a Latency accumulator.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot is a point-in-time view of all Metrics.
type Snapshot struct {
	Published   uint64
	RingDrops   uint64
	FanoutDrops uint64
	Malformed   uint64
	ShmLatency  LatencySnapshot
	TcpLatency  LatencySnapshot
}

// New allocates a metrics container.
func New() *Metrics {
	return &Metrics{}
}

// IncPublished records a quote successfully written to the ring.
func (m *Metrics) IncPublished() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.published, 1)
}

// IncRingDrop records a quote dropped because the ring was full.
func (m *Metrics) IncRingDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ringDrops, 1)
}

// IncFanoutDrop records a quote dropped from a slow TCP subscriber's queue.
func (m *Metrics) IncFanoutDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fanoutDrops, 1)
}

// IncMalformed records a line that failed to decode as a quote.
func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.malformed, 1)
}

// ObserveShmLatency records a publish-to-consume latency sample taken by
// the shared-memory consumer.
func (m *Metrics) ObserveShmLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.shmLatency.Observe(d)
}

// ObserveTcpLatency records a publish-to-consume latency sample taken by
// the TCP consumer.
func (m *Metrics) ObserveTcpLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.tcpLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Published:   atomic.LoadUint64(&m.published),
		RingDrops:   atomic.LoadUint64(&m.ringDrops),
		FanoutDrops: atomic.LoadUint64(&m.fanoutDrops),
		Malformed:   atomic.LoadUint64(&m.malformed),
		ShmLatency:  m.shmLatency.Snapshot(),
		TcpLatency:  m.tcpLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *Latency) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *Latency) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
