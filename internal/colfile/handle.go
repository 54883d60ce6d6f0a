package colfile

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"

	"github.com/touchhouse/touchhouse/internal/errs"
)

// Handle is a reference-counted mmap of one column file. Scans and the
// background merger share a Handle; the mapping is only unmapped once the
// last holder releases it (spec §5, "shared resources").
type Handle struct {
	path string
	file *os.File
	data mmap.MMap

	refs int32
	once sync.Once
}

// Open mmaps path read-only. The returned Handle starts with one reference;
// callers pass it to other concurrent readers via Acquire, and must call
// Release exactly once for every reference they hold (including the one
// returned here).
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "opening column file %s", path)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.IoError, err, "mmap column file %s", path)
	}
	return &Handle{path: path, file: f, data: data, refs: 1}, nil
}

// Acquire increments the reference count and returns h for chaining.
func (h *Handle) Acquire() *Handle {
	atomic.AddInt32(&h.refs, 1)
	return h
}

// Release decrements the reference count, unmapping and closing the
// underlying file once it reaches zero.
func (h *Handle) Release() {
	if atomic.AddInt32(&h.refs, -1) > 0 {
		return
	}
	h.once.Do(func() {
		h.data.Unmap()
		h.file.Close()
	})
}

// Bytes returns the mapped file contents. Valid only while the caller holds
// a reference obtained from Open or Acquire.
func (h *Handle) Bytes() []byte {
	return h.data
}
