package api

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype clients must request (via
// grpc.CallContentSubtype) to have the server decode with Codec instead of
// grpc's default proto codec.
const CodecName = "commitlog"

func init() {
	encoding.RegisterCodec(Codec{})
}

// wireMarshaler is implemented by every request/response type exchanged over
// the gRPC service: ProduceRequest, ProduceResponse, ConsumeRequest,
// ConsumeResponse, and Record itself.
type wireMarshaler interface {
	Marshal() ([]byte, error)
}

// wireUnmarshaler decodes into the receiver in place, matching the protoc
// generated-code shape closely enough for grpc.Codec to use it without
// reflection.
type wireUnmarshaler interface {
	Unmarshal(data []byte) error
}

// Codec implements google.golang.org/grpc/encoding.Codec over the hand-rolled
// wire types in this package, in place of the protobuf codec grpc registers
// by default — there's no protoc-gen-go output to generate one against, so
// the service speaks this package's own tag/length/value format instead.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMarshaler)
	if !ok {
		return nil, fmt.Errorf("commitlog codec: %T does not implement Marshal", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireUnmarshaler)
	if !ok {
		return fmt.Errorf("commitlog codec: %T does not implement Unmarshal", v)
	}
	return m.Unmarshal(data)
}
