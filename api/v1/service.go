package api

import (
	"context"

	"google.golang.org/grpc"
)

// This file is the hand-written equivalent of what protoc-gen-go-grpc would
// produce from a log.proto service definition. The retrieval pack carries no
// .proto or generated stubs, so the service binding is built directly on
// grpc.ServiceDesc/grpc.ClientConn rather than on generated code; Codec
// (registered under CodecName) stands in for the usual proto codec.

const logServiceName = "log.v1.Log"

// LogServer is the server-side contract of the Log gRPC service.
type LogServer interface {
	Produce(context.Context, *ProduceRequest) (*ProduceResponse, error)
	Consume(context.Context, *ConsumeRequest) (*ConsumeResponse, error)
	ConsumeStream(*ConsumeRequest, Log_ConsumeStreamServer) error
}

// Log_ConsumeStreamServer is the server side of the ConsumeStream RPC: a
// send-only view of the underlying grpc.ServerStream.
type Log_ConsumeStreamServer interface {
	Send(*ConsumeResponse) error
	grpc.ServerStream
}

type logConsumeStreamServer struct {
	grpc.ServerStream
}

func (s *logConsumeStreamServer) Send(m *ConsumeResponse) error {
	return s.ServerStream.SendMsg(m)
}

func _Log_Produce_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProduceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LogServer).Produce(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + logServiceName + "/Produce"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LogServer).Produce(ctx, req.(*ProduceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Log_Consume_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConsumeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LogServer).Consume(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + logServiceName + "/Consume"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LogServer).Consume(ctx, req.(*ConsumeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Log_ConsumeStream_Handler(srv any, stream grpc.ServerStream) error {
	m := new(ConsumeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LogServer).ConsumeStream(m, &logConsumeStreamServer{stream})
}

// LogServiceDesc describes the Log service to grpc.Server.RegisterService,
// in place of the ServiceDesc protoc-gen-go-grpc would emit.
var LogServiceDesc = grpc.ServiceDesc{
	ServiceName: logServiceName,
	HandlerType: (*LogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Produce", Handler: _Log_Produce_Handler},
		{MethodName: "Consume", Handler: _Log_Consume_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ConsumeStream", Handler: _Log_ConsumeStream_Handler, ServerStreams: true},
	},
	Metadata: "log.proto",
}

// RegisterLogServer registers srv's RPC methods on s.
func RegisterLogServer(s grpc.ServiceRegistrar, srv LogServer) {
	s.RegisterService(&LogServiceDesc, srv)
}

// LogClient is the client-side contract of the Log gRPC service.
type LogClient interface {
	Produce(ctx context.Context, in *ProduceRequest, opts ...grpc.CallOption) (*ProduceResponse, error)
	Consume(ctx context.Context, in *ConsumeRequest, opts ...grpc.CallOption) (*ConsumeResponse, error)
	ConsumeStream(ctx context.Context, in *ConsumeRequest, opts ...grpc.CallOption) (Log_ConsumeStreamClient, error)
}

type logClient struct {
	cc *grpc.ClientConn
}

// NewLogClient wraps an established connection as a LogClient, routing every
// call through Codec via CallContentSubtype.
func NewLogClient(cc *grpc.ClientConn) LogClient {
	return &logClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append(opts, grpc.CallContentSubtype(CodecName))
}

func (c *logClient) Produce(ctx context.Context, in *ProduceRequest, opts ...grpc.CallOption) (*ProduceResponse, error) {
	out := new(ProduceResponse)
	if err := c.cc.Invoke(ctx, "/"+logServiceName+"/Produce", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *logClient) Consume(ctx context.Context, in *ConsumeRequest, opts ...grpc.CallOption) (*ConsumeResponse, error) {
	out := new(ConsumeResponse)
	if err := c.cc.Invoke(ctx, "/"+logServiceName+"/Consume", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *logClient) ConsumeStream(ctx context.Context, in *ConsumeRequest, opts ...grpc.CallOption) (Log_ConsumeStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &LogServiceDesc.Streams[0], "/"+logServiceName+"/ConsumeStream", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &logConsumeStreamClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Log_ConsumeStreamClient is the client side of the ConsumeStream RPC: a
// receive-only view of the underlying grpc.ClientStream.
type Log_ConsumeStreamClient interface {
	Recv() (*ConsumeResponse, error)
	grpc.ClientStream
}

type logConsumeStreamClient struct {
	grpc.ClientStream
}

func (x *logConsumeStreamClient) Recv() (*ConsumeResponse, error) {
	m := new(ConsumeResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
