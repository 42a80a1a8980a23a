//go:build !linux || !(amd64 || arm64)

package shm

// Create is unavailable on this platform; shared-memory segments require
// Linux's mmap/shm_open semantics.
func Create(name string, size int) (*Segment, error) {
	return nil, ErrUnsupported
}

// Attach is unavailable on this platform.
func Attach(name string, size int) (*Segment, error) {
	return nil, ErrUnsupported
}

// Close is a no-op on the stub Segment, which can never be constructed.
func (s *Segment) Close() error {
	return ErrUnsupported
}
