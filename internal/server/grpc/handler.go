package grpc

import (
	"context"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/envelope"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.identity.Register(ctx, services.RegisterInput{
		Name:  stringField(req, "name"),
		Phone: stringField(req, "phone"),
	})
	if err != nil {
		return nil, err
	}
	return response(map[string]*structpb.Value{"user": userValue(user)}), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.identity.Login(ctx, services.LoginInput{
		LoginHandle: stringField(req, "login_handle"),
		Password:    stringField(req, "password"),
	})
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(user)
}

func (s *GRPCServer) StartPhoneAuth(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := s.identity.StartPhoneAuth(ctx, stringField(req, "phone")); err != nil {
		return nil, err
	}
	return response(map[string]*structpb.Value{"status": structpb.NewStringValue("SENT")}), nil
}

func (s *GRPCServer) ConfirmPhoneAuth(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.identity.ConfirmPhoneAuth(ctx, stringField(req, "phone"), stringField(req, "code"))
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(user)
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.authorizedTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	user, err := s.identity.UpdateProfile(ctx, id, services.UpdateProfileInput{
		LoginHandle: optionalString(req, "login_handle"),
		Password:    optionalString(req, "password"),
		Phone:       stringField(req, "phone"),
	})
	if err != nil {
		return nil, err
	}
	return response(map[string]*structpb.Value{"user": userValue(user)}), nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.authorizedTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.identity.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	return response(nil), nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return response(map[string]*structpb.Value{"status": structpb.NewStringValue("OK")}), nil
}

// authorizedTarget reads the target id and checks that the caller owns it
// or is an admin.
func (s *GRPCServer) authorizedTarget(ctx context.Context, req *structpb.Struct) (int64, error) {
	id, err := idField(req, "id")
	if err != nil {
		return 0, err
	}
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return 0, envelope.Unauthorized("missing token")
	}
	if !p.CanManage(id) {
		return 0, envelope.Forbidden("not allowed to manage this user")
	}
	return id, nil
}

func (s *GRPCServer) sessionResponse(user *models.User) (*structpb.Struct, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, common.Internal(err)
	}
	return response(map[string]*structpb.Value{
		"user":         userValue(user),
		"access_token": structpb.NewStringValue(token),
	}), nil
}
