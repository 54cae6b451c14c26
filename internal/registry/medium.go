package registry

import (
	"fmt"
	"os"
	"sync"
)

// MemMedium is an in-memory image, used in tests and by -print-registry dry runs.
type MemMedium struct {
	mu  sync.Mutex
	buf [ImageSize]byte

	// Writes counts WriteAt calls.
	Writes int
}

// NewMemMedium returns a blank (all zero) image.
func NewMemMedium() *MemMedium {
	return &MemMedium{}
}

// ReadAt implements io.ReaderAt.
func (m *MemMedium) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off+int64(len(p)) > ImageSize {
		return 0, fmt.Errorf("read out of range: off=%d len=%d", off, len(p))
	}
	return copy(p, m.buf[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *MemMedium) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off+int64(len(p)) > ImageSize {
		return 0, fmt.Errorf("write out of range: off=%d len=%d", off, len(p))
	}
	m.Writes++
	return copy(m.buf[off:], p), nil
}

// Bytes returns a copy of the raw image.
func (m *MemMedium) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, ImageSize)
	copy(out, m.buf[:])
	return out
}

// FileMedium is an image file on disk. Every write is synced.
type FileMedium struct {
	f *os.File
}

// OpenFile opens the image at path, creating a zeroed image if it does not
// exist. A short file is padded with zeros.
func OpenFile(path string) (*FileMedium, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open registry image: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat registry image: %w", err)
	}
	if fi.Size() < ImageSize {
		if err := f.Truncate(ImageSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("size registry image: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync registry image: %w", err)
		}
	}
	return &FileMedium{f: f}, nil
}

// ReadAt implements io.ReaderAt.
func (m *FileMedium) ReadAt(p []byte, off int64) (int, error) {
	return m.f.ReadAt(p, off)
}

// WriteAt writes and fsyncs.
func (m *FileMedium) WriteAt(p []byte, off int64) (int, error) {
	n, err := m.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	if err := m.f.Sync(); err != nil {
		return n, fmt.Errorf("sync: %w", err)
	}
	return n, nil
}

// Close closes the underlying file.
func (m *FileMedium) Close() error {
	return m.f.Close()
}
