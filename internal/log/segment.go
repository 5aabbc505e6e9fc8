package log

import (
	"os"
	"path/filepath"

	api "github.com/devnexus/commitlog/api/v1"
)

// segment bundles one store and one index sharing a directory, at a shared
// base offset, per spec.md §4.3. dir must already exist; the segment
// creates exactly two files inside it: .store and .index.
type segment struct {
	dir        string
	store      *store
	index      *index
	baseOffset uint64
	nextOffset uint64
	config     Config
}

func newSegment(dir string, baseOffset uint64, c Config) (*segment, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, api.ErrPathNotDirectory{Path: dir}
	}

	s := &segment{
		dir:        dir,
		baseOffset: baseOffset,
		config:     c,
	}

	storeFile, err := os.OpenFile(
		filepath.Join(dir, ".store"),
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0644,
	)
	if err != nil {
		return nil, err
	}
	if s.store, err = newStore(storeFile, c.Segment.MaxStoreBytes); err != nil {
		return nil, err
	}

	indexFile, err := os.OpenFile(
		filepath.Join(dir, ".index"),
		os.O_RDWR|os.O_CREATE,
		0644,
	)
	if err != nil {
		return nil, err
	}
	if s.index, err = newIndex(indexFile, c.Segment.MaxIndexBytes); err != nil {
		return nil, err
	}

	if last, ok := s.index.ReadLastEntry(); ok {
		s.nextOffset = baseOffset + uint64(last.RelativeOffset) + 1
	} else {
		s.nextOffset = baseOffset
	}

	return s, nil
}

// Append assigns record.Offset = s.nextOffset when unset, encodes the
// record, and writes it to the store and index. If the encoded record
// would overflow the store's capacity, no state is mutated and
// api.ErrStoreFull is returned carrying the record so the caller can retry
// it on a fresh segment.
func (s *segment) Append(record *api.Record) (offset uint64, err error) {
	cur := s.nextOffset
	if record.Offset == nil {
		record.Offset = &cur
	}

	p, err := record.Marshal()
	if err != nil {
		return 0, api.ErrEncode{Err: err}
	}

	if !s.store.CanStoreRecord(len(p)) {
		return 0, api.ErrStoreFull{Record: record}
	}

	_, pos, err := s.store.Append(p)
	if err != nil {
		return 0, err
	}

	if err := s.index.Write(uint32(s.nextOffset-s.baseOffset), pos); err != nil {
		return 0, err
	}

	s.nextOffset++
	return cur, nil
}

// Read decodes the record stored at the given absolute offset.
func (s *segment) Read(absoluteOffset uint64) (*api.Record, error) {
	relative := absoluteOffset - s.baseOffset

	entry, ok := s.index.Read(relative)
	if !ok {
		return nil, api.ErrIndexEntryNotFound{Relative: uint32(relative)}
	}

	p, err := s.store.Read(entry.Position)
	if err != nil {
		return nil, err
	}

	record, err := api.UnmarshalRecord(p)
	if err != nil {
		return nil, api.ErrDecode{Err: err}
	}
	return record, nil
}

// IsMaxed reports whether the segment's store or index has reached its
// configured capacity and should no longer accept appends.
func (s *segment) IsMaxed() bool {
	return s.store.size >= s.config.Segment.MaxStoreBytes ||
		s.index.size >= s.config.Segment.MaxIndexBytes
}

// Close flushes and truncates the index; the store has no additional close
// work beyond flushing its buffer.
func (s *segment) Close() error {
	if err := s.index.Close(); err != nil {
		return err
	}
	return s.store.Close()
}

// Remove closes the segment, then unlinks its store and index files.
func (s *segment) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.store.Name()); err != nil {
		return err
	}
	return os.Remove(s.index.Name())
}
