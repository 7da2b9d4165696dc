package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "chatandpay.identity.v1.IdentityService"

// Method names.
const (
	MethodRegister         = "Register"
	MethodLogin            = "Login"
	MethodStartPhoneAuth   = "StartPhoneAuth"
	MethodConfirmPhoneAuth = "ConfirmPhoneAuth"
	MethodUpdateProfile    = "UpdateProfile"
	MethodDeleteUser       = "DeleteUser"
	MethodPing             = "Ping"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IdentityServer is the server API. Requests and responses are
// google.protobuf.Struct documents.
type IdentityServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartPhoneAuth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmPhoneAuth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(IdentityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(IdentityServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc describes IdentityServer for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodRegister, Handler: unaryHandler(MethodRegister, IdentityServer.Register)},
		{MethodName: MethodLogin, Handler: unaryHandler(MethodLogin, IdentityServer.Login)},
		{MethodName: MethodStartPhoneAuth, Handler: unaryHandler(MethodStartPhoneAuth, IdentityServer.StartPhoneAuth)},
		{MethodName: MethodConfirmPhoneAuth, Handler: unaryHandler(MethodConfirmPhoneAuth, IdentityServer.ConfirmPhoneAuth)},
		{MethodName: MethodUpdateProfile, Handler: unaryHandler(MethodUpdateProfile, IdentityServer.UpdateProfile)},
		{MethodName: MethodDeleteUser, Handler: unaryHandler(MethodDeleteUser, IdentityServer.DeleteUser)},
		{MethodName: MethodPing, Handler: unaryHandler(MethodPing, IdentityServer.Ping)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterIdentityServer registers srv with s.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls IdentityServer methods over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with in and returns the decoded response.
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
