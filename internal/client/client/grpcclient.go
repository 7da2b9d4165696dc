// Package client talks to the identity service over gRPC and keeps the
// session token between calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	gs "github.com/dmitrijs2005/chatandpay/internal/server/grpc"
	"github.com/dmitrijs2005/chatandpay/internal/server/envelope"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// User is the client-side view of an account.
type User struct {
	ID          int64
	Name        string
	LoginHandle *string
	Phone       string
	Role        string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	api         *gs.Client

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewIdentityClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewIdentityClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = gs.NewClient(conn)
	return c, nil
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// Logout forgets the session token.
func (s *GRPCClient) Logout() {
	s.setAccessToken("")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, fields map[string]*structpb.Value) (*structpb.Struct, error) {
	out, err := s.api.Call(ctx, method, &structpb.Struct{Fields: fields})
	if err != nil {
		return nil, convertError(err)
	}
	return out, nil
}

// convertError turns a gRPC status into ErrUnavailable or the server's envelope.
func convertError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() == codes.Unavailable {
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
	if env, ok := envelope.FromStatus(st); ok {
		return env
	}
	return err
}

func (s *GRPCClient) Register(ctx context.Context, name, phone string) (*User, error) {
	out, err := s.call(ctx, gs.MethodRegister, map[string]*structpb.Value{
		"name":  structpb.NewStringValue(name),
		"phone": structpb.NewStringValue(phone),
	})
	if err != nil {
		return nil, err
	}
	return parseUser(out)
}

// Login authenticates with a handle and password and keeps the issued token.
func (s *GRPCClient) Login(ctx context.Context, loginHandle string, password []byte) (*User, error) {
	out, err := s.call(ctx, gs.MethodLogin, map[string]*structpb.Value{
		"login_handle": structpb.NewStringValue(loginHandle),
		"password":     structpb.NewStringValue(string(password)),
	})
	if err != nil {
		return nil, err
	}
	return s.session(out)
}

func (s *GRPCClient) StartPhoneAuth(ctx context.Context, phone string) error {
	_, err := s.call(ctx, gs.MethodStartPhoneAuth, map[string]*structpb.Value{
		"phone": structpb.NewStringValue(phone),
	})
	return err
}

// ConfirmPhoneAuth redeems a code and keeps the issued token.
func (s *GRPCClient) ConfirmPhoneAuth(ctx context.Context, phone, code string) (*User, error) {
	out, err := s.call(ctx, gs.MethodConfirmPhoneAuth, map[string]*structpb.Value{
		"phone": structpb.NewStringValue(phone),
		"code":  structpb.NewStringValue(code),
	})
	if err != nil {
		return nil, err
	}
	return s.session(out)
}

// UpdateProfile sends nil handle or password as null, which leaves them unchanged.
func (s *GRPCClient) UpdateProfile(ctx context.Context, id int64, loginHandle *string, password []byte, phone string) (*User, error) {
	fields := map[string]*structpb.Value{
		"id":           structpb.NewStringValue(strconv.FormatInt(id, 10)),
		"login_handle": structpb.NewNullValue(),
		"password":     structpb.NewNullValue(),
		"phone":        structpb.NewStringValue(phone),
	}
	if loginHandle != nil {
		fields["login_handle"] = structpb.NewStringValue(*loginHandle)
	}
	if password != nil {
		fields["password"] = structpb.NewStringValue(string(password))
	}

	out, err := s.call(ctx, gs.MethodUpdateProfile, fields)
	if err != nil {
		return nil, err
	}
	return parseUser(out)
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.call(ctx, gs.MethodDeleteUser, map[string]*structpb.Value{
		"id": structpb.NewStringValue(strconv.FormatInt(id, 10)),
	})
	return err
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.call(ctx, gs.MethodPing, nil)
	return err
}

func (s *GRPCClient) session(out *structpb.Struct) (*User, error) {
	user, err := parseUser(out)
	if err != nil {
		return nil, err
	}
	token := out.GetFields()["access_token"].GetStringValue()
	if token == "" {
		return nil, errors.New("response has no access token")
	}
	s.setAccessToken(token)
	return user, nil
}

func parseUser(out *structpb.Struct) (*User, error) {
	u := out.GetFields()["user"].GetStructValue()
	if u == nil {
		return nil, errors.New("response has no user")
	}
	f := u.GetFields()

	id, err := strconv.ParseInt(f["id"].GetStringValue(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad user id: %w", err)
	}

	user := &User{
		ID:    id,
		Name:  f["name"].GetStringValue(),
		Phone: f["phone"].GetStringValue(),
		Role:  f["role"].GetStringValue(),
	}
	if v, ok := f["login_handle"].GetKind().(*structpb.Value_StringValue); ok {
		handle := v.StringValue
		user.LoginHandle = &handle
	}
	return user, nil
}
