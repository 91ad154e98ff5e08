package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Registration request")

	acc, err := s.users.Register(ctx, services.RegisterRequest{
		UserName: stringField(req, "username"),
		Email:    stringField(req, "email"),
		FullName: stringField(req, "full_name"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{
		"message":  "User registered.",
		"username": acc.UserName,
	})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	tok, err := s.users.Login(ctx, stringField(req, "username"), stringField(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{
		"token":      tok.AccessToken,
		"token_type": tok.TokenType,
		"expires_at": tok.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *GRPCServer) Profile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	acc, err := s.users.Profile(ctx, SubjectFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{
		"username":  acc.UserName,
		"email":     acc.Email,
		"full_name": acc.FullName,
	})
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	err := s.users.ChangePassword(ctx, SubjectFromContext(ctx),
		stringField(req, "old_password"),
		stringField(req, "new_password"),
		stringField(req, "confirm_password"),
	)
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{"message": "Password changed."})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(map[string]any{"status": "OK"})
}
