package log

// Config is read-only after construction and is shared by value from Log to
// each Segment, and from Segment to its Store and Index: nothing mutates
// it, so a copy is as good as a reference.
type Config struct {
	Segment struct {
		// MaxIndexBytes bounds the memory-mapped region backing a segment's
		// index. Index.Write refuses writes that would exceed it.
		MaxIndexBytes uint64
		// MaxStoreBytes is the capacity threshold above which a segment's
		// store is considered full.
		MaxStoreBytes uint64
		// InitialOffset is the base offset used when a log directory
		// contains no segments yet.
		InitialOffset uint64
		// MaxRecordSizeKB bounds len(record.Value). Despite the name, this
		// is compared directly against a byte count, not a kilobyte count
		// — see spec.md §9 for why that's preserved deliberately. Zero
		// means unbounded.
		MaxRecordSizeKB uint64
	}
}
