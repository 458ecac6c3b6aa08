package vcrypto

import (
	"golang.org/x/exp/mmap"
)

// ChunkSize is the fixed plaintext chunk size used by both the content
// hasher and the streaming AEAD codec.
const ChunkSize = 32 * 1024

// mappedFile is a read-only memory-mapped view of a file, chunked into
// ChunkSize pieces. golang.org/x/exp/mmap exposes ReadAt rather than a
// contiguous slice, so chunks are read via ReadAt instead of slicing a
// mapped []byte directly; the underlying pages are still mapped read-only
// by the OS, satisfying spec.md's memory-mapped-input requirement without
// pulling in a second mmap library for slice access.
type mappedFile struct {
	r    *mmap.ReaderAt
	size int64
}

func openMapped(path string) (*mappedFile, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &mappedFile{r: r, size: int64(r.Len())}, nil
}

func (m *mappedFile) Close() error {
	return m.r.Close()
}

// chunkAt reads the chunk beginning at byte offset off, at most ChunkSize
// bytes, truncated at EOF.
func (m *mappedFile) chunkAt(off int64) ([]byte, error) {
	remaining := m.size - off
	if remaining <= 0 {
		return nil, nil
	}
	n := int64(ChunkSize)
	if remaining < n {
		n = remaining
	}
	buf := make([]byte, n)
	if _, err := m.r.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// isLastChunk reports whether the chunk starting at off is the terminal
// chunk of the file.
func (m *mappedFile) isLastChunk(off int64) bool {
	return off+ChunkSize >= m.size
}
