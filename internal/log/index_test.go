package log

import (
	"os"
	"testing"

	api "github.com/devnexus/commitlog/api/v1"
	"github.com/stretchr/testify/require"
)

// TestIndex exercises write/read/close/reopen and the read-past-the-last-entry
// boundary, matching the scenario in spec.md §8 table row 6.
func TestIndex(t *testing.T) {
	f, err := os.CreateTemp("", "index_test")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	idx, err := newIndex(f, 1024)
	require.NoError(t, err)

	_, ok := idx.Read(0)
	require.False(t, ok)

	entries := []struct {
		Off uint32
		Pos uint64
	}{
		{0, 10}, {1, 20}, {2, 30}, {3, 40},
	}

	for _, e := range entries {
		require.NoError(t, idx.Write(e.Off, e.Pos))
		got, ok := idx.Read(uint64(e.Off))
		require.True(t, ok)
		require.Equal(t, e.Off, got.RelativeOffset)
		require.Equal(t, e.Pos, got.Position)
	}

	require.NoError(t, idx.Close())

	f, err = os.OpenFile(f.Name(), os.O_RDWR, 0644)
	require.NoError(t, err)

	idx, err = newIndex(f, 1024)
	require.NoError(t, err)

	for _, e := range []struct {
		Off uint32
		Pos uint64
	}{
		{4, 50}, {5, 60}, {6, 70}, {7, 80},
	} {
		require.NoError(t, idx.Write(e.Off, e.Pos))
	}

	got, ok := idx.Read(7)
	require.True(t, ok)
	require.Equal(t, uint32(7), got.RelativeOffset)
	require.Equal(t, uint64(80), got.Position)

	_, ok = idx.Read(8)
	require.False(t, ok)

	require.NoError(t, idx.Close())
}

// TestIndexFull exercises the capacity error: writing past the
// memory-mapped region returns ErrIndexFull and leaves size unchanged.
func TestIndexFull(t *testing.T) {
	f, err := os.CreateTemp("", "index_full_test")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	idx, err := newIndex(f, entryWidth)
	require.NoError(t, err)

	require.NoError(t, idx.Write(0, 10))

	sizeBefore := idx.size
	err = idx.Write(1, 20)
	require.Equal(t, api.ErrIndexFull{}, err)
	require.Equal(t, sizeBefore, idx.size)
}
