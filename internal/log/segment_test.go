package log

import (
	"os"
	"testing"

	api "github.com/devnexus/commitlog/api/v1"
	"github.com/stretchr/testify/require"
)

// TestSegment exercises the Segment type end to end: appends up to index
// capacity, reads each one back, then exercises store-capacity maxing and
// removal — mirroring spec.md §8 scenario 5 and the teacher's
// segment_test.go.
func TestSegment(t *testing.T) {
	dir, err := os.MkdirTemp("", "segment_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	want := &api.Record{Value: []byte("hello world")}

	c := Config{}
	c.Segment.MaxStoreBytes = 1024
	c.Segment.MaxIndexBytes = entryWidth * 3

	s, err := newSegment(dir, 16, c)
	require.NoError(t, err)
	require.Equal(t, uint64(16), s.nextOffset)
	require.False(t, s.IsMaxed())

	for i := uint64(0); i < 3; i++ {
		rec := want.Clone()
		off, err := s.Append(rec)
		require.NoError(t, err)
		require.Equal(t, 16+i, off)

		got, err := s.Read(off)
		require.NoError(t, err)
		require.Equal(t, want.Value, got.Value)
	}

	_, err = s.Append(want.Clone())
	require.Equal(t, api.ErrIndexFull{}, err)
	require.True(t, s.IsMaxed())

	c.Segment.MaxStoreBytes = uint64(len(want.Value) * 3)
	c.Segment.MaxIndexBytes = 1024

	s, err = newSegment(dir, 16, c)
	require.NoError(t, err)
	require.True(t, s.IsMaxed())

	require.NoError(t, s.Remove())

	s, err = newSegment(dir, 16, c)
	require.NoError(t, err)
	require.False(t, s.IsMaxed())
}

// TestSegmentStoreFullPreservesRecord exercises the capacity-rejection
// contract: when the store can't fit the encoded record, Append leaves the
// segment's state unmutated and returns the same record (with its offset
// assigned) so the caller can retry it on a fresh segment.
func TestSegmentStoreFullPreservesRecord(t *testing.T) {
	dir, err := os.MkdirTemp("", "segment_store_full_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	c := Config{}
	c.Segment.MaxIndexBytes = 1024
	c.Segment.MaxStoreBytes = 10

	s, err := newSegment(dir, 0, c)
	require.NoError(t, err)

	rec := &api.Record{Value: []byte("hello world")}
	_, err = s.Append(rec)

	full, ok := err.(api.ErrStoreFull)
	require.True(t, ok)
	require.Equal(t, rec, full.Record)
	require.Equal(t, uint64(0), s.nextOffset)
}

// TestSegmentPathNotDirectory exercises construction against a path that
// isn't a directory.
func TestSegmentPathNotDirectory(t *testing.T) {
	f, err := os.CreateTemp("", "segment_not_dir_test")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = newSegment(f.Name(), 0, Config{})
	require.Equal(t, api.ErrPathNotDirectory{Path: f.Name()}, err)
}
