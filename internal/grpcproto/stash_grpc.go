package grpcproto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	Stash_Put_FullMethodName    = "/skipstash.Stash/Put"
	Stash_Get_FullMethodName    = "/skipstash.Stash/Get"
	Stash_Remove_FullMethodName = "/skipstash.Stash/Remove"
	Stash_Scan_FullMethodName   = "/skipstash.Stash/Scan"
)

// StashClient is the client API for Stash service.
//
// Every request and row travels as a BytesValue holding one of the messages
// of this package in protobuf wire format.
type StashClient interface {
	Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Get(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Remove(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Scan(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (Stash_ScanClient, error)
}

type stashClient struct {
	cc grpc.ClientConnInterface
}

func NewStashClient(cc grpc.ClientConnInterface) StashClient {
	return &stashClient{cc}
}

func (c *stashClient) Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	err := c.cc.Invoke(ctx, Stash_Put_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stashClient) Get(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, Stash_Get_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stashClient) Remove(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	err := c.cc.Invoke(ctx, Stash_Remove_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stashClient) Scan(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (Stash_ScanClient, error) {
	stream, err := c.cc.NewStream(ctx, &Stash_ServiceDesc.Streams[0], Stash_Scan_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &stashScanClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Stash_ScanClient interface {
	Recv() (*wrapperspb.BytesValue, error)
	grpc.ClientStream
}

type stashScanClient struct {
	grpc.ClientStream
}

func (x *stashScanClient) Recv() (*wrapperspb.BytesValue, error) {
	m := new(wrapperspb.BytesValue)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// StashServer is the server API for Stash service.
// All implementations must embed UnimplementedStashServer
// for forward compatibility
type StashServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Get(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Remove(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Scan(*wrapperspb.BytesValue, Stash_ScanServer) error
	mustEmbedUnimplementedStashServer()
}

// UnimplementedStashServer must be embedded to have forward compatible implementations.
type UnimplementedStashServer struct {
}

func (UnimplementedStashServer) Put(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Put not implemented")
}
func (UnimplementedStashServer) Get(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedStashServer) Remove(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Remove not implemented")
}
func (UnimplementedStashServer) Scan(*wrapperspb.BytesValue, Stash_ScanServer) error {
	return status.Errorf(codes.Unimplemented, "method Scan not implemented")
}
func (UnimplementedStashServer) mustEmbedUnimplementedStashServer() {}

func RegisterStashServer(s grpc.ServiceRegistrar, srv StashServer) {
	s.RegisterService(&Stash_ServiceDesc, srv)
}

func _Stash_Put_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StashServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Stash_Put_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StashServer).Put(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Stash_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StashServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Stash_Get_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StashServer).Get(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Stash_Remove_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StashServer).Remove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Stash_Remove_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StashServer).Remove(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Stash_Scan_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(wrapperspb.BytesValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StashServer).Scan(m, &stashScanServer{stream})
}

type Stash_ScanServer interface {
	Send(*wrapperspb.BytesValue) error
	grpc.ServerStream
}

type stashScanServer struct {
	grpc.ServerStream
}

func (x *stashScanServer) Send(m *wrapperspb.BytesValue) error {
	return x.ServerStream.SendMsg(m)
}

// Stash_ServiceDesc is the grpc.ServiceDesc for Stash service.
var Stash_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "skipstash.Stash",
	HandlerType: (*StashServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Put",
			Handler:    _Stash_Put_Handler,
		},
		{
			MethodName: "Get",
			Handler:    _Stash_Get_Handler,
		},
		{
			MethodName: "Remove",
			Handler:    _Stash_Remove_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Scan",
			Handler:       _Stash_Scan_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "skipstash.proto",
}
