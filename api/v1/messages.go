package api

import (
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	recordFieldNumber    protowire.Number = 1
	reqOffsetFieldNumber protowire.Number = 2
)

// ProduceRequest carries one record to be appended.
type ProduceRequest struct {
	Record *Record
}

// ProduceResponse carries the absolute offset assigned to the appended
// record.
type ProduceResponse struct {
	Offset uint64
}

// ConsumeRequest names the absolute offset to read.
type ConsumeRequest struct {
	Offset uint64
}

// ConsumeResponse carries the record read back.
type ConsumeResponse struct {
	Record *Record
}

func (m *ProduceRequest) Marshal() ([]byte, error) {
	var b []byte
	if m.Record != nil {
		rb, err := m.Record.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, recordFieldNumber, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	return b, nil
}

func (m *ProduceRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrDecode{Err: protowire.ParseError(n)}
		}
		data = data[n:]
		switch {
		case num == recordFieldNumber && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			rec, err := UnmarshalRecord(v)
			if err != nil {
				return err
			}
			m.Record = rec
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

func (m *ProduceResponse) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, reqOffsetFieldNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Offset)
	return b, nil
}

func (m *ProduceResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrDecode{Err: protowire.ParseError(n)}
		}
		data = data[n:]
		switch {
		case num == reqOffsetFieldNumber && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			m.Offset = v
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

func (m *ConsumeRequest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, reqOffsetFieldNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Offset)
	return b, nil
}

func (m *ConsumeRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrDecode{Err: protowire.ParseError(n)}
		}
		data = data[n:]
		switch {
		case num == reqOffsetFieldNumber && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			m.Offset = v
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

func (m *ConsumeResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Record != nil {
		rb, err := m.Record.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, recordFieldNumber, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	return b, nil
}

func (m *ConsumeResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return ErrDecode{Err: protowire.ParseError(n)}
		}
		data = data[n:]
		switch {
		case num == recordFieldNumber && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return ErrDecode{Err: protowire.ParseError(n)}
			}
			rec, err := UnmarshalRecord(v)
			if err != nil {
				return err
			}
			m.Record = rec
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
