package log

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	api "github.com/devnexus/commitlog/api/v1"
	"go.uber.org/zap"
)

// Log owns an ordered collection of segments over a directory, directing
// appends to the active (last) segment, rolling segments over as they
// fill, and routing reads by absolute offset, per spec.md §4.4.
type Log struct {
	mu sync.RWMutex

	Dir    string
	Config Config

	activeSegment *segment
	segments      []*segment

	logger *zap.Logger
}

type segmentReader struct {
	*store
	off int64
}

// NewLog opens (or creates) a log rooted at dir. If no segments exist on
// disk, one is created at Config.Segment.InitialOffset.
func NewLog(dir string, c Config) (*Log, error) {
	if c.Segment.MaxStoreBytes == 0 {
		c.Segment.MaxStoreBytes = 1024
	}
	if c.Segment.MaxIndexBytes == 0 {
		c.Segment.MaxIndexBytes = 1024
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	l := &Log{
		Dir:    dir,
		Config: c,
		logger: zap.L().Named("log"),
	}

	return l, l.setup()
}

// setup scans dir's immediate subdirectories, treating each name as the
// decimal base offset of a segment, and opens them in ascending order. A
// name that can't be parsed as a uint64 fails with ErrParseInt; one that
// parses but isn't canonical (e.g. "007") fails with ErrInvalidSegmentFile.
func (l *Log) setup() error {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return err
	}

	var baseOffsets []uint64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		off, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			return api.ErrParseInt{Path: entry.Name(), Err: err}
		}
		if strconv.FormatUint(off, 10) != entry.Name() {
			return api.ErrInvalidSegmentFile{Path: entry.Name()}
		}
		baseOffsets = append(baseOffsets, off)
	}

	sort.Slice(baseOffsets, func(i, j int) bool {
		return baseOffsets[i] < baseOffsets[j]
	})

	for _, off := range baseOffsets {
		if err := l.newSegment(off); err != nil {
			return err
		}
	}

	if l.segments == nil {
		if err := l.newSegment(l.Config.Segment.InitialOffset); err != nil {
			return err
		}
	}
	return nil
}

// Append rejects oversized records with ErrRecordTooLarge, then appends to
// the active segment. A segment that reports ErrStoreFull is rolled over
// and the same record retried on the fresh segment (the reactive path); a
// segment that accepts the append but is then maxed out triggers a
// proactive rollover that does not retry anything.
func (l *Log) Append(record *api.Record) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Config.Segment.MaxRecordSizeKB > 0 &&
		uint64(len(record.Value)) > l.Config.Segment.MaxRecordSizeKB {
		return 0, api.ErrRecordTooLarge{}
	}

	off, err := l.activeSegment.Append(record)
	if err == nil {
		if l.activeSegment.IsMaxed() {
			if err := l.newSegment(off + 1); err != nil {
				return 0, err
			}
		}
		return off, nil
	}

	full, ok := err.(api.ErrStoreFull)
	if !ok {
		return 0, err
	}

	if err := l.newSegment(l.activeSegment.nextOffset); err != nil {
		return 0, err
	}
	return l.activeSegment.Append(full.Record)
}

// Read finds the segment whose [base_offset, next_offset) range contains
// off and delegates to it. An offset outside every segment's range
// surfaces as ErrIndexEntryNotFound, explicitly, rather than by delegating
// to an arbitrary default segment (spec.md §9's open question).
func (l *Log) Read(off uint64) (*api.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := sort.Search(len(l.segments), func(i int) bool {
		return off < l.segments[i].nextOffset
	})

	if i == len(l.segments) || l.segments[i].baseOffset > off {
		return nil, api.ErrIndexEntryNotFound{Relative: uint32(off)}
	}

	return l.segments[i].Read(off)
}

// Close closes every segment. Safe to call multiple times.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.segments {
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Remove closes the log, then removes its entire directory tree.
func (l *Log) Remove() error {
	if err := l.Close(); err != nil {
		return err
	}
	return os.RemoveAll(l.Dir)
}

// Reset removes the log and re-creates it empty at the same directory.
func (l *Log) Reset() error {
	if err := l.Remove(); err != nil {
		return err
	}
	l.segments = nil
	l.activeSegment = nil
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return err
	}
	return l.setup()
}

// LowestOffset returns the base offset of the oldest segment.
func (l *Log) LowestOffset() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.segments[0].baseOffset, nil
}

// HighestOffset returns one less than the active segment's next offset —
// the last assigned offset once anything has been appended — or 0 when that
// next offset is 0.
func (l *Log) HighestOffset() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	off := l.segments[len(l.segments)-1].nextOffset
	if off == 0 {
		return 0, nil
	}
	return off - 1, nil
}

// Truncate removes every segment whose next_offset is at or below
// lowest+1 — i.e. every segment that holds no record past lowest.
func (l *Log) Truncate(lowest uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var kept []*segment
	for _, s := range l.segments {
		if s.nextOffset <= lowest+1 {
			l.logger.Debug("truncating segment", zap.Uint64("base_offset", s.baseOffset))
			if err := s.Remove(); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, s)
	}
	l.segments = kept
	return nil
}

// Reader returns an io.Reader over the raw bytes of every segment's store,
// in order — the length-prefixed frames as they sit on disk, undecoded.
// Useful for bulk export/backup of a log directory.
func (l *Log) Reader() io.Reader {
	l.mu.RLock()
	defer l.mu.RUnlock()

	readers := make([]io.Reader, len(l.segments))
	for i, s := range l.segments {
		readers[i] = &segmentReader{store: s.store, off: 0}
	}
	return io.MultiReader(readers...)
}

func (r *segmentReader) Read(p []byte) (int, error) {
	n, err := r.ReadAt(p, r.off)
	r.off += int64(n)
	return n, err
}

// newSegment creates a segment directory (named by the decimal base
// offset) under l.Dir, opens a segment in it, appends it to the log's
// segment list, and makes it active.
func (l *Log) newSegment(off uint64) error {
	dir := filepath.Join(l.Dir, strconv.FormatUint(off, 10))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	s, err := newSegment(dir, off, l.Config)
	if err != nil {
		return err
	}

	l.logger.Debug("new segment", zap.Uint64("base_offset", off))

	l.segments = append(l.segments, s)
	l.activeSegment = s
	return nil
}
