// Package quote defines the fixed-layout market quote record shared between
// the publisher and both consumers. The record is copied byte-for-byte into
// shared memory on the hot path, so its size and field order are load-bearing.
package quote

import (
	"fmt"
	"unsafe"
)

// InstrumentLen is the capacity of the inline instrument field, including the
// terminating zero byte.
const InstrumentLen = 16

// Size is the pinned wire/shared-memory size of MarketQuote in bytes.
const Size = 64

// MarketQuote is a cache-line-sized, position-independent market quote.
//
// Layout (offset: size, field):
//
//	0:  16  instrument (zero-terminated, zero-padded)
//	16: 8   bid
//	24: 8   ask
//	32: 8   timestampNS
//	40: 24  padding
//
// The struct's own Go alignment is 8 bytes (float64/int64 dominate); the
// 64-byte alignment invariant is satisfied by always placing MarketQuote
// values at 64-byte-aligned offsets inside the ring buffer's slot array
// (see internal/ring), not by a language-level alignment attribute — Go has
// none. Verify with VerifyLayout.
//
//go:generate codable -file quote.go
type MarketQuote struct {
	instrument  [InstrumentLen]byte
	Bid         float64
	Ask         float64
	TimestampNS int64
	_           [24]byte
}

func init() {
	if err := VerifyLayout(); err != nil {
		panic(err)
	}
}

// VerifyLayout checks the compile-time size invariant that the rest of the
// system (ring slot stride, shared-memory segment sizing) depends on.
func VerifyLayout() error {
	if got := unsafe.Sizeof(MarketQuote{}); got != Size {
		return fmt.Errorf("quote: MarketQuote must be exactly %d bytes, got %d", Size, got)
	}
	return nil
}

// New builds a MarketQuote from an instrument symbol, bid/ask prices and a
// nanosecond timestamp. Overlong instruments are truncated to InstrumentLen-1
// bytes and the field is always zero-terminated.
func New(instrument string, bid, ask float64, timestampNS int64) MarketQuote {
	var q MarketQuote
	q.SetInstrument(instrument)
	q.Bid = bid
	q.Ask = ask
	q.TimestampNS = timestampNS
	return q
}

// SetInstrument copies s into the inline instrument field, truncating to
// InstrumentLen-1 bytes and zero-terminating, matching the constructor rule.
func (q *MarketQuote) SetInstrument(s string) {
	for i := range q.instrument {
		q.instrument[i] = 0
	}
	n := len(s)
	if n > InstrumentLen-1 {
		n = InstrumentLen - 1
	}
	copy(q.instrument[:n], s[:n])
}

// Instrument returns the instrument symbol with trailing zero bytes trimmed.
func (q MarketQuote) Instrument() string {
	n := 0
	for n < len(q.instrument) && q.instrument[n] != 0 {
		n++
	}
	return string(q.instrument[:n])
}

// Bytes returns the 64-byte wire representation of q as a byte slice backed
// by q itself; callers must not retain it past q's lifetime if q is reused.
func (q *MarketQuote) Bytes() []byte {
	return (*[Size]byte)(unsafe.Pointer(q))[:]
}

// FromBytes reinterprets a 64-byte slice as a MarketQuote copy. b must be at
// least Size bytes.
func FromBytes(b []byte) MarketQuote {
	var q MarketQuote
	copy((*[Size]byte)(unsafe.Pointer(&q))[:], b[:Size])
	return q
}
