// Package authclient is a gRPC client for gophauth.v1.AuthService.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const servicePrefix = "/gophauth.v1.AuthService/"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrRejected     = errors.New("rejected")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("server unavailable")
)

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Profile is the public part of an account.
type Profile struct {
	UserName string
	Email    string
	FullName string
}

// GRPCClient is safe for concurrent use.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.TokenType+" "+token)

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
	if tok := s.token(); tok != "" {
		ctx = withAccessToken(ctx, tok)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// New creates a client for endpointURL. Extra dial options are appended to
// the defaults (plaintext transport, bearer token interceptor).
func New(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

// SetToken sets the bearer token sent with every call.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, servicePrefix+method, req, resp); err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func field(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func (s *GRPCClient) Register(ctx context.Context, userName, email, fullName, password string) error {
	_, err := s.call(ctx, "Register", map[string]any{
		"username":  userName,
		"email":     email,
		"full_name": fullName,
		"password":  password,
	})
	return err
}

// Login authenticates and keeps the issued token for later calls.
func (s *GRPCClient) Login(ctx context.Context, identifier, password string) (*Token, error) {
	resp, err := s.call(ctx, "Login", map[string]any{"username": identifier, "password": password})
	if err != nil {
		return nil, err
	}

	exp, err := time.Parse(time.RFC3339, field(resp, "expires_at"))
	if err != nil {
		return nil, fmt.Errorf("bad expires_at: %w", err)
	}

	tok := &Token{AccessToken: field(resp, "token"), TokenType: field(resp, "token_type"), ExpiresAt: exp}
	s.SetToken(tok.AccessToken)
	return tok, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*Profile, error) {
	resp, err := s.call(ctx, "Profile", map[string]any{})
	if err != nil {
		return nil, err
	}
	return &Profile{UserName: field(resp, "username"), Email: field(resp, "email"), FullName: field(resp, "full_name")}, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	_, err := s.call(ctx, "ChangePassword", map[string]any{
		"old_password":     oldPassword,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	})
	return err
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.call(ctx, "Ping", map[string]any{})
	if err != nil {
		return err
	}
	if field(resp, "status") != "OK" {
		return ErrUnavailable
	}
	return nil
}

// mapError keeps the server message and classifies the status code.
func (s *GRPCClient) mapError(err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == "Signature has expired" {
			return fmt.Errorf("%w: %s", ErrTokenExpired, st.Message())
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
