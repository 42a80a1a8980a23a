//go:build linux && (amd64 || arm64)

package shm

import (
	"fmt"
	"os"
	"syscall"

	"quotefeed/internal/exception"
)

// Create creates (or attaches to, if already present) a shared-memory
// segment of exactly size bytes and maps it read-write. Size is fixed at
// creation; if a segment of the same name already exists with a different
// size, Create fails with exception.ErrSizeMismatch rather than silently
// truncating someone else's data, matching the source's "use it as-is"
// policy but refusing a mismatched capacity outright.
func Create(name string, size int) (*Segment, error) {
	if err := validateArgs(name, size); err != nil {
		return nil, err
	}

	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		if err := file.Truncate(int64(size)); err != nil {
			file.Close()
			os.Remove(path)
			return nil, fmt.Errorf("shm: truncate %s: %w", path, err)
		}
	} else if info.Size() != int64(size) {
		file.Close()
		return nil, exception.ErrSizeMismatch
	}

	mem, err := syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	file.Close()

	return &Segment{mem: mem, path: path, creator: true}, nil
}

// Attach opens an existing shared-memory segment and maps it read-write,
// because the consumer side of the ring it hosts publishes its read cursor
// into the segment. The segment must already exist and must be exactly
// size bytes. Unlike Create, Attach never removes the backing file.
func Attach(name string, size int) (*Segment, error) {
	if err := validateArgs(name, size); err != nil {
		return nil, err
	}

	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	if info.Size() != int64(size) {
		file.Close()
		return nil, exception.ErrSizeMismatch
	}

	mem, err := syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &Segment{mem: mem, path: path, creator: false}, nil
}

// Close unmaps the segment. If this process created it, Close also removes
// the backing file; an attached (consumer-side) segment leaves the file in
// place so the publisher keeps sole ownership of its lifecycle.
func (s *Segment) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := syscall.Munmap(s.mem); err != nil {
		return fmt.Errorf("shm: munmap %s: %w", s.path, err)
	}
	if s.creator {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("shm: remove %s: %w", s.path, err)
		}
	}
	return nil
}
