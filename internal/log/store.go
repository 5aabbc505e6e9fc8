package log

import (
	"bufio"
	"encoding/binary"
	"os"
	"sync"

	api "github.com/devnexus/commitlog/api/v1"
)

var enc = binary.BigEndian

const lenWidth = 8

// store is an append-only byte file holding length-prefixed record frames,
// per spec.md §4.1. It is single-writer; reads may proceed concurrently
// with writes for positions known to precede the current size.
type store struct {
	*os.File
	mu            sync.Mutex
	buf           *bufio.Writer
	size          uint64
	maxStoreBytes uint64
	closed        bool
}

// newStore opens a store backed by file, using the file's current length as
// the store's logical size.
func newStore(file *os.File, maxStoreBytes uint64) (*store, error) {
	fi, err := os.Stat(file.Name())
	if err != nil {
		return nil, err
	}

	return &store{
		File:          file,
		size:          uint64(fi.Size()),
		buf:           bufio.NewWriter(file),
		maxStoreBytes: maxStoreBytes,
	}, nil
}

// Append writes an 8-byte big-endian length prefix followed by p at the
// current end of file. It returns the total bytes written (8+len(p)) and
// the byte position of the length prefix.
func (s *store) Append(p []byte) (n uint64, pos uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos = s.size

	if err := binary.Write(s.buf, enc, uint64(len(p))); err != nil {
		return 0, 0, err
	}

	w, err := s.buf.Write(p)
	if err != nil {
		return 0, 0, err
	}

	w += lenWidth
	s.size += uint64(w)

	if err := s.buf.Flush(); err != nil {
		return 0, 0, err
	}

	return uint64(w), pos, nil
}

// Read reads the 8-byte length at pos, then exactly that many payload
// bytes following it.
func (s *store) Read(pos uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos >= s.size {
		return nil, api.ErrStoreEntryNotFound{Position: pos}
	}

	if err := s.buf.Flush(); err != nil {
		return nil, err
	}

	size := make([]byte, lenWidth)
	if _, err := s.File.ReadAt(size, int64(pos)); err != nil {
		return nil, err
	}

	b := make([]byte, enc.Uint64(size))
	if _, err := s.File.ReadAt(b, int64(pos+lenWidth)); err != nil {
		return nil, err
	}

	return b, nil
}

// ReadAt satisfies io.ReaderAt directly against the underlying file, used
// by Log.Reader to stream the whole store without decoding records.
func (s *store) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil {
		return 0, err
	}

	return s.File.ReadAt(p, off)
}

// CanStoreRecord reports whether a payload of payloadLen bytes would fit
// under maxStoreBytes once its length prefix is included. The comparison is
// strict: the eighth byte boundary counts as full.
func (s *store) CanStoreRecord(payloadLen int) bool {
	return s.size+uint64(payloadLen)+lenWidth < s.maxStoreBytes
}

// Close flushes the buffered writer and closes the underlying file. Safe to
// call multiple times.
func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.buf.Flush(); err != nil {
		return err
	}
	return s.File.Close()
}
