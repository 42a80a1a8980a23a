// Package shm manages the POSIX shared-memory segment that carries the
// ring buffer between the publisher and the shared-memory consumer.
package shm

import (
	"os"
	"path/filepath"

	"quotefeed/internal/exception"
)

// ErrUnsupported is returned on platforms without a shared-memory mmap
// implementation; see segment_stub.go.
var ErrUnsupported = exception.ErrUnsupported

// Segment is a named, fixed-size shared-memory region mapped into this
// process's address space. The zero value is not usable; build one with
// Create or Attach.
type Segment struct {
	mem     []byte
	path    string
	creator bool
	closed  bool
}

// Bytes returns the mapped region. The creator may read and write it; an
// attached segment should, by convention, only be written through the ring
// it hosts (the consumer side of the ring never writes the write cursor).
func (s *Segment) Bytes() []byte {
	return s.mem
}

// Path returns the filesystem path backing the segment, for diagnostics.
func (s *Segment) Path() string {
	return s.path
}

// IsCreator reports whether this process created the segment, as opposed
// to attaching to one created elsewhere.
func (s *Segment) IsCreator() bool {
	return s.creator
}

// SegmentExists reports whether a segment of the given name already has a
// backing file on disk, e.g. left behind by a publisher that crashed
// without running Close. An empty name always reports false.
func SegmentExists(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(segmentPath(name))
	return err == nil
}

// RemoveSegment deletes a segment's backing file if present. It is safe to
// call when no such file exists. Used by the publisher at startup to clear
// a stale segment from a prior crashed run before creating a fresh,
// zero-filled one.
func RemoveSegment(name string) error {
	if name == "" {
		return exception.ErrEmptyName
	}
	err := os.Remove(segmentPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func validateArgs(name string, size int) error {
	if name == "" {
		return exception.ErrEmptyName
	}
	if size <= 0 {
		return exception.ErrZeroSize
	}
	return nil
}

// segmentPath resolves a logical segment name to a backing file path,
// preferring /dev/shm (tmpfs-backed, matching the original POSIX shm_open
// convention) and falling back to the OS temp directory when /dev/shm is
// unavailable, e.g. on a non-Linux development box.
func segmentPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "quotefeed_"+name)
	}
	return filepath.Join(os.TempDir(), "quotefeed_"+name)
}
