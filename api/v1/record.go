// Package api defines the wire-level Record type shared between the log
// core and its external collaborators (the gRPC service, the replicator).
package api

import (
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	valueFieldNumber  protowire.Number = 1
	offsetFieldNumber protowire.Number = 2
)

// Record is an opaque byte payload plus an optional absolute offset. Offset
// is nil when a caller hasn't assigned one yet; the segment that accepts the
// append fills it in. After a successful read, Offset is always non-nil.
type Record struct {
	Value  []byte
	Offset *uint64
}

// Clone returns a deep copy of r. Segment.Append assigns Offset on the
// record it is given, so a copy lets the same value be appended more than
// once; the Log's own retry path passes the original record, not a clone.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	v := make([]byte, len(r.Value))
	copy(v, r.Value)
	out := &Record{Value: v}
	if r.Offset != nil {
		off := *r.Offset
		out.Offset = &off
	}
	return out
}

// Marshal encodes r into a self-describing, deterministic length-delimited
// tagged wire format built on the protobuf wire primitives: field 1 is the
// value (bytes), field 2 is the optional offset (varint). This is the fixed
// schema referenced by spec §6 — stable across every artifact of a given
// log directory.
func (r *Record) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, valueFieldNumber, protowire.BytesType)
	b = protowire.AppendBytes(b, r.Value)
	if r.Offset != nil {
		b = protowire.AppendTag(b, offsetFieldNumber, protowire.VarintType)
		b = protowire.AppendVarint(b, *r.Offset)
	}
	return b, nil
}

// UnmarshalRecord decodes bytes produced by Record.Marshal. Unknown fields
// are skipped so the schema can grow without breaking old readers.
func UnmarshalRecord(data []byte) (*Record, error) {
	rec := &Record{}
	if err := rec.Unmarshal(data); err != nil {
		return nil, err
	}
	return rec, nil
}

// Unmarshal decodes data produced by Marshal into r in place, so that Record
// satisfies the wireUnmarshaler interface the gRPC codec dispatches on.
func (r *Record) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrDecode{Err: protowire.ParseError(n)}
		}
		data = data[n:]

		switch {
		case num == valueFieldNumber && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			r.Value = append([]byte(nil), v...)
			data = data[n:]

		case num == offsetFieldNumber && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			off := v
			r.Offset = &off
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			data = data[n:]
		}
	}
	return nil
}
