package log

import (
	"os"

	api "github.com/devnexus/commitlog/api/v1"
	"github.com/tysonmote/gommap"
)

const (
	offWidth   uint64 = 4
	posWidth   uint64 = 8
	entryWidth        = offWidth + posWidth
)

// IndexEntry is a decoded 12-byte index record: a relative offset (measured
// from the owning segment's base offset) and the byte position of the
// corresponding record's length-prefix in the segment's store.
type IndexEntry struct {
	RelativeOffset uint32
	Position       uint64
}

// index is a fixed-width sparse map from relative offset to store position,
// backed by a file memory-mapped into the process, per spec.md §4.2.
type index struct {
	file *os.File
	mmap gommap.MMap
	size uint64
}

// newIndex wraps an already-open index file, records its current logical
// length as size, then extends the file to maxIndexBytes so the mapping has
// room to grow.
func newIndex(file *os.File, maxIndexBytes uint64) (*index, error) {
	idx := &index{file: file}

	fi, err := os.Stat(file.Name())
	if err != nil {
		return nil, err
	}
	idx.size = uint64(fi.Size())

	if err := os.Truncate(file.Name(), int64(maxIndexBytes)); err != nil {
		return nil, err
	}

	if idx.mmap, err = gommap.Map(
		idx.file.Fd(),
		gommap.PROT_READ|gommap.PROT_WRITE,
		gommap.MAP_SHARED,
	); err != nil {
		return nil, err
	}

	return idx, nil
}

// Write appends a 12-byte entry (relativeOffset, position) at the current
// logical size and advances size by 12. Fails with ErrIndexFull if there is
// no room left in the mapping.
func (i *index) Write(relativeOffset uint32, position uint64) error {
	if uint64(len(i.mmap)) < i.size+entryWidth {
		return api.ErrIndexFull{}
	}

	enc.PutUint32(i.mmap[i.size:i.size+offWidth], relativeOffset)
	enc.PutUint64(i.mmap[i.size+offWidth:i.size+entryWidth], position)
	i.size += entryWidth

	return nil
}

// Read returns the entry at ordinal entryIndex, or ok=false when
// entryIndex*12 falls at or beyond the logical size (including when the
// index is empty).
func (i *index) Read(entryIndex uint64) (entry IndexEntry, ok bool) {
	if i.size == 0 {
		return IndexEntry{}, false
	}

	bytePos := entryIndex * entryWidth
	if bytePos+entryWidth > i.size {
		return IndexEntry{}, false
	}

	off := enc.Uint32(i.mmap[bytePos : bytePos+offWidth])
	pos := enc.Uint64(i.mmap[bytePos+offWidth : bytePos+entryWidth])

	return IndexEntry{RelativeOffset: off, Position: pos}, true
}

// ReadLastEntry returns the final written entry, or ok=false when empty.
func (i *index) ReadLastEntry() (entry IndexEntry, ok bool) {
	if i.size == 0 {
		return IndexEntry{}, false
	}
	return i.Read(i.size/entryWidth - 1)
}

// Close truncates the backing file down to the logical size (discarding
// the pre-allocated tail), flushes the mapping, and closes the file. It is
// idempotent.
func (i *index) Close() error {
	if i.mmap == nil {
		return nil
	}

	if err := i.mmap.Sync(gommap.MS_SYNC); err != nil {
		return err
	}
	if err := i.file.Sync(); err != nil {
		return err
	}
	if err := i.file.Truncate(int64(i.size)); err != nil {
		return err
	}

	i.mmap = nil
	return i.file.Close()
}

// Name returns the path of the backing file.
func (i *index) Name() string {
	return i.file.Name()
}
