package api

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds, not type hierarchies: Capacity, NotFound, Structural,
// Encoding and I/O, per spec.md §7. Each kind that a caller is expected to
// react to (rollover, reject, reconstruct) gets its own type; plain
// filesystem errors from os/io are surfaced unwrapped.

// ErrIndexFull is returned by Index.Write when appending an entry would
// overflow the memory-mapped region. The Log propagates it unchanged.
type ErrIndexFull struct{}

func (ErrIndexFull) Error() string { return "index is full" }

func (e ErrIndexFull) GRPCStatus() *status.Status {
	return status.New(codes.ResourceExhausted, e.Error())
}

// ErrStoreFull is returned by Segment.Append when the encoded record would
// overflow the Store's capacity check. It carries the rejected record so
// the Log can retry the same record on a fresh segment; the retry goes
// through Segment.Append again, which encodes the record a second time.
type ErrStoreFull struct {
	Record *Record
}

func (ErrStoreFull) Error() string { return "store is full" }

func (e ErrStoreFull) GRPCStatus() *status.Status {
	return status.New(codes.ResourceExhausted, e.Error())
}

// ErrRecordTooLarge is returned by Log.Append when a record's value exceeds
// the configured max_record_size_kb (a byte count, despite the name — see
// spec.md §9).
type ErrRecordTooLarge struct{}

func (ErrRecordTooLarge) Error() string { return "record too large" }

func (e ErrRecordTooLarge) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// ErrIndexEntryNotFound is returned when a segment's index has no entry at
// the requested relative offset — the offset is not present in this
// segment (or in any segment, once the Log has searched all of them). When
// the Log returns it because no segment covers the offset, Relative holds
// the requested absolute offset converted to uint32.
type ErrIndexEntryNotFound struct {
	Relative uint32
}

func (e ErrIndexEntryNotFound) Error() string {
	return fmt.Sprintf("index entry %d not found", e.Relative)
}

// GRPCStatus reports the offset as out of the log's range. It mirrors the
// teacher's ErrorOffsetOutOfRange mapping so the out-of-scope RPC surface
// can translate this error without a second taxonomy.
func (e ErrIndexEntryNotFound) GRPCStatus() *status.Status {
	st := status.New(codes.NotFound, fmt.Sprintf("offset %d out of range", e.Relative))

	msg := fmt.Sprintf("the requested offset is outside the log's range: %d", e.Relative)
	d := &errdetails.LocalizedMessage{Locale: "en-US", Message: msg}
	withDetails, err := st.WithDetails(d)
	if err != nil {
		return st
	}
	return withDetails
}

// ErrStoreEntryNotFound is returned when a Store read's position is beyond
// the store's current size.
type ErrStoreEntryNotFound struct {
	Position uint64
}

func (e ErrStoreEntryNotFound) Error() string {
	return fmt.Sprintf("store entry at position %d not found", e.Position)
}

func (e ErrStoreEntryNotFound) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// ErrInvalidSegmentFile is returned when a log directory's entry name parses
// as a base offset but doesn't canonically represent it — e.g. a name with
// leading zeros, which strconv.ParseUint accepts but strconv.FormatUint
// never produces.
type ErrInvalidSegmentFile struct {
	Path string
}

func (e ErrInvalidSegmentFile) Error() string {
	return fmt.Sprintf("invalid segment file %q", e.Path)
}

// ErrPathNotDirectory is returned by Segment construction when the given
// path exists but is not a directory. A path that does not exist surfaces
// as the underlying os.Stat error instead.
type ErrPathNotDirectory struct {
	Path string
}

func (e ErrPathNotDirectory) Error() string {
	return fmt.Sprintf("path %q is not a directory", e.Path)
}

// ErrEncode wraps a failure to encode a record into the wire schema.
type ErrEncode struct {
	Err error
}

func (e ErrEncode) Error() string { return fmt.Sprintf("encode record: %v", e.Err) }
func (e ErrEncode) Unwrap() error { return e.Err }

// ErrDecode wraps a failure to decode bytes read from a Store back into a
// record.
type ErrDecode struct {
	Err error
}

func (e ErrDecode) Error() string { return fmt.Sprintf("decode record: %v", e.Err) }
func (e ErrDecode) Unwrap() error { return e.Err }

// ErrParseInt wraps a failure to parse a segment subdirectory name as a
// decimal base offset.
type ErrParseInt struct {
	Path string
	Err  error
}

func (e ErrParseInt) Error() string {
	return fmt.Sprintf("parse base offset from %q: %v", e.Path, e.Err)
}
func (e ErrParseInt) Unwrap() error { return e.Err }
