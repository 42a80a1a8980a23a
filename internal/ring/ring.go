// Package ring implements the single-producer/single-consumer lock-free
// ring buffer of quote.MarketQuote records that sits at the heart of the
// shared-memory segment. The ring is laid out directly over a
// caller-supplied byte buffer, so the same code works whether that buffer
// is a plain Go slice (tests) or an mmap'd shared-memory region.
package ring

import (
	"sync/atomic"
	"unsafe"

	"quotefeed/internal/exception"
	"quotefeed/internal/quote"
)

// Capacity is the number of slots in the ring, matching the original
// RING_BUFFER_SIZE. It must be a power of two; one slot is always kept
// empty to disambiguate full from empty.
const Capacity = 1024

const capMask = Capacity - 1

// cacheLineSize separates the write and read cursors onto distinct cache
// lines so producer and consumer never false-share.
const cacheLineSize = 64

// HeaderSize is the footprint of the two cache-line-padded cursors.
const HeaderSize = 2 * cacheLineSize

// SlotsSize is the footprint of the slot array.
const SlotsSize = Capacity * quote.Size

// Size is the total shared-memory footprint a Ring requires: HeaderSize
// plus SlotsSize.
const Size = HeaderSize + SlotsSize

func init() {
	if Capacity&capMask != 0 {
		panic("ring: Capacity must be a power of two")
	}
}

// header overlays the two atomic cursors at the front of the buffer.
// writeIdx and readIdx are each given their own cache line; only the first
// 8 bytes of each line are meaningful, the rest is padding.
type header struct {
	writeIdx uint64
	_        [cacheLineSize - 8]byte
	readIdx  uint64
	_        [cacheLineSize - 8]byte
}

// Ring is a fixed-capacity SPSC queue of MarketQuote values backed by a
// byte buffer. The zero value is not usable; build one with New. A Ring
// must not be copied after first use.
//
// Layout (offset: size):
//
//	0:    64  write index, cache-line padded
//	64:   64  read index, cache-line padded
//	128:  Capacity*64  slot array
type Ring struct {
	hdr   *header
	slots unsafe.Pointer // &buf[HeaderSize], base of the slot array
}

// New wraps buf as a Ring. buf must be at least Size bytes. A freshly
// created segment must already be zero-filled (mmap over a newly truncated
// file guarantees this); an attached segment carries whatever state the
// producer has already written and must not be re-zeroed.
func New(buf []byte) (*Ring, error) {
	if len(buf) < Size {
		return nil, exception.ErrSizeMismatch
	}
	return &Ring{
		hdr:   (*header)(unsafe.Pointer(&buf[0])),
		slots: unsafe.Pointer(&buf[HeaderSize]),
	}, nil
}

func (r *Ring) slot(i uint64) *quote.MarketQuote {
	off := uintptr(i) * uintptr(quote.Size)
	return (*quote.MarketQuote)(unsafe.Pointer(uintptr(r.slots) + off))
}

// TryWrite attempts to publish q without blocking. It returns
// exception.ErrRingFull if the ring has no free slot; the caller (the
// publisher) is expected to drop the quote and count the failure.
func (r *Ring) TryWrite(q quote.MarketQuote) error {
	current := atomic.LoadUint64(&r.hdr.writeIdx)
	next := (current + 1) & capMask

	if next == atomic.LoadUint64(&r.hdr.readIdx) {
		return exception.ErrRingFull
	}

	*r.slot(current) = q
	atomic.StoreUint64(&r.hdr.writeIdx, next)
	return nil
}

// TryRead attempts to consume the oldest unread quote without blocking. It
// returns exception.ErrRingEmpty if the ring currently has nothing to read.
func (r *Ring) TryRead() (quote.MarketQuote, error) {
	current := atomic.LoadUint64(&r.hdr.readIdx)
	if current == atomic.LoadUint64(&r.hdr.writeIdx) {
		return quote.MarketQuote{}, exception.ErrRingEmpty
	}

	q := *r.slot(current)
	atomic.StoreUint64(&r.hdr.readIdx, (current+1)&capMask)
	return q, nil
}

// IsEmpty reports whether the ring has nothing to read, from the
// consumer's perspective.
func (r *Ring) IsEmpty() bool {
	return atomic.LoadUint64(&r.hdr.readIdx) == atomic.LoadUint64(&r.hdr.writeIdx)
}

// IsFull reports whether the ring has no free slot, from the producer's
// perspective.
func (r *Ring) IsFull() bool {
	current := atomic.LoadUint64(&r.hdr.writeIdx)
	next := (current + 1) & capMask
	return next == atomic.LoadUint64(&r.hdr.readIdx)
}

// AvailableForWrite returns the number of free slots.
func (r *Ring) AvailableForWrite() uint64 {
	w := atomic.LoadUint64(&r.hdr.writeIdx)
	rd := atomic.LoadUint64(&r.hdr.readIdx)
	return (rd - w - 1) & capMask
}

// AvailableForRead returns the number of unread slots.
func (r *Ring) AvailableForRead() uint64 {
	w := atomic.LoadUint64(&r.hdr.writeIdx)
	rd := atomic.LoadUint64(&r.hdr.readIdx)
	return (w - rd) & capMask
}

// UsableCapacity is the number of slots the ring can actually hold; one
// slot is always reserved to disambiguate full from empty.
func UsableCapacity() uint64 {
	return Capacity - 1
}
