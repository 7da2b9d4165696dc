package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/envelope"
	"github.com/dmitrijs2005/chatandpay/internal/server/metrics"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const requestIDHeader = "x-request-id"

// protectedMethods need an authenticated principal.
var protectedMethods = map[string]struct{}{
	FullMethod(MethodUpdateProfile): {},
	FullMethod(MethodDeleteUser):    {},
}

func methodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// observeInterceptor tags the call with a request id, logs it and records metrics.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMetadata(ctx, requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

	method := methodName(info.FullMethod)
	start := s.now()
	resp, err := handler(ctx, req)
	elapsed := s.now().Sub(start)

	code := status.Code(err)
	if s.metrics != nil {
		s.metrics.Observe(metrics.TransportGRPC, method, code.String(), elapsed)
	}
	s.logger.Info(ctx, "grpc request",
		"request_id", requestID, "method", method, "code", code.String(), "duration", elapsed)

	return resp, err
}

// errorInterceptor converts every handler error into an envelope. Server
// faults are logged with their cause, which never reaches the client.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}

	env := envelope.FromError(err)
	if env.IsServerFault() {
		s.logger.Error(ctx, "request failed", "method", methodName(info.FullMethod), "error", err.Error())
	}
	return nil, env
}

// accessTokenInterceptor resolves the principal for protected methods from
// the access_token metadata or an "authorization: Bearer" header.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, common.AccessTokenHeaderName)
	if accessToken == "" {
		accessToken, _ = strings.CutPrefix(firstMetadata(ctx, "authorization"), "Bearer ")
	}
	if accessToken == "" {
		return nil, envelope.Unauthorized("missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, envelope.Unauthorized("token expired")
		}
		return nil, envelope.Unauthorized("invalid token")
	}

	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, envelope.Unauthorized("invalid token")
		}
		return nil, err
	}

	return handler(auth.WithPrincipal(ctx, auth.NewPrincipal(user)), req)
}

// throttleInterceptor limits StartPhoneAuth per phone number.
func (s *GRPCServer) throttleInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != FullMethod(MethodStartPhoneAuth) {
		return handler(ctx, req)
	}

	in, _ := req.(*structpb.Struct)
	if !s.limiter.Allow(stringField(in, "phone"), s.now()) {
		if s.metrics != nil {
			s.metrics.Throttled(metrics.TransportGRPC)
		}
		return nil, envelope.TooManyRequests("too many verification requests, try again later")
	}
	return handler(ctx, req)
}
