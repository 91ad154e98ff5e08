package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// protectedMethods require a bearer token.
var protectedMethods = map[string]bool{
	MethodProfile:        true,
	MethodChangePassword: true,
}

// SubjectFromContext returns the token subject stored by the interceptor, or
// "" for unprotected calls.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

// bearerToken extracts the token from "authorization: Bearer <token>".
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
	if !found || !strings.EqualFold(scheme, common.TokenType) {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protectedMethods[info.FullMethod] {

		token := bearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, MsgMissingToken)
		}

		sub, err := s.users.AuthenticateRequest(ctx, token)
		if err != nil {
			s.logger.Info(ctx, "token rejected", "method", info.FullMethod, "error", err)
			return nil, toStatus(err)
		}

		ctx = context.WithValue(ctx, subjectKey, sub)
	}

	return handler(ctx, req)
}
