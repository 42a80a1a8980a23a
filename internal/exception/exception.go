// Package exception collects the sentinel errors shared across the quote
// feed packages, in the same spirit as the teacher's pkg/exception package.
package exception

import "github.com/yanun0323/errors"

var (
	// ErrRingFull is returned by TryWrite when the ring has no free slot.
	ErrRingFull = errors.New("ring: full")
	// ErrRingEmpty is returned by TryRead when the ring has no unread slot.
	ErrRingEmpty = errors.New("ring: empty")

	// ErrEmptyName is returned when a shared-memory segment name is empty.
	ErrEmptyName = errors.New("shm: empty segment name")
	// ErrZeroSize is returned when a shared-memory segment size is zero.
	ErrZeroSize = errors.New("shm: zero segment size")
	// ErrSizeMismatch is returned when an existing segment's size does not
	// match the size the ring buffer requires.
	ErrSizeMismatch = errors.New("shm: existing segment size mismatch")
	// ErrNotMapped describes an operation on a segment whose mapping has
	// already been released. Segment.Close on an already closed segment
	// returns nil, not this error.
	ErrNotMapped = errors.New("shm: segment not mapped")
	// ErrUnsupported is returned on platforms with no shared-memory mmap
	// implementation.
	ErrUnsupported = errors.New("shm: unsupported platform")

	// ErrMissingField is the base error for a missing JSON field; use
	// NewMissingField for the field-specific message.
	ErrMissingField = errors.New("quote: missing field")

	// ErrNotListening is returned when Accept is called before Listen.
	ErrNotListening = errors.New("wire: not listening")
)

// NewMissingField wraps ErrMissingField with the offending field name.
func NewMissingField(field string) error {
	return errors.Wrap(ErrMissingField, field)
}
