// Package services contains server-side business logic. This file implements
// UserService, which binds the stateless credential core to account storage:
// registration, login, request authentication, profile lookup and password
// change.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"golang.org/x/sync/semaphore"
)

// conflictError reports a taken unique account field. It matches
// common.ErrorAlreadyExists.
type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return common.ErrorAlreadyExists }

var (
	ErrUsernameTaken  = &conflictError{msg: "Username is taken"}
	ErrEmailTaken     = &conflictError{msg: "Email is taken"}
	ErrInvalidAccount = errors.New("a username without '@' and a valid email are required")
)

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	UserName string
	Email    string
	FullName string
	Password string
}

// UserService provides account operations on top of auth.Service.
type UserService struct {
	repo      users.Repository
	auth      *auth.Service
	hashSlots *semaphore.Weighted
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// NewUserService wires the credential core to account storage. At most
// maxConcurrentHashes password hashes run at the same time; m may be nil.
func NewUserService(repo users.Repository, a *auth.Service, maxConcurrentHashes int, m *metrics.Metrics, l logging.Logger) *UserService {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 1
	}
	return &UserService{
		repo:      repo,
		auth:      a,
		hashSlots: semaphore.NewWeighted(int64(maxConcurrentHashes)),
		metrics:   m,
		logger:    l.With("module", "user_service"),
	}
}

// Register creates an account after checking that the username and email
// are free and that the password passes the policy.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (acc *models.Account, err error) {
	defer func() { s.metrics.Observe(metrics.OpRegister, err) }()

	// '@' routes a login identifier to the email lookup, so usernames cannot
	// carry it
	if strings.TrimSpace(req.UserName) == "" || strings.Contains(req.UserName, "@") ||
		!strings.Contains(req.Email, "@") {
		return nil, ErrInvalidAccount
	}

	if err := s.ensureFree(ctx, s.repo.FindByUsername, req.UserName, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.FindByEmail, req.Email, ErrEmailTaken); err != nil {
		return nil, err
	}

	hash, err := withHashSlot(ctx, s, func() (string, error) {
		return s.auth.PrepareRegistration(req.Password)
	})
	if err != nil {
		return nil, err
	}

	acc, err = s.repo.Save(ctx, &models.Account{
		UserName:     req.UserName,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "saving account failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "registered", "username", acc.UserName, "id", acc.ID)
	return acc, nil
}

// Login checks the password of the account named by identifier (an email
// when it contains '@', a username otherwise) and issues a token whose
// subject is identifier. Unknown identifiers and wrong passwords both yield
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, identifier, plain string) (tok *auth.Token, err error) {
	defer func() { s.metrics.Observe(metrics.OpLogin, err) }()

	acc, err := s.lookup(ctx, identifier)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "account lookup failed", "error", err)
			return nil, common.ErrorInternal
		}
		_, err = withHashSlot(ctx, s, func() (struct{}, error) {
			return struct{}{}, s.auth.RejectUnknown(plain)
		})
		s.logger.Info(ctx, "login rejected", "identifier", identifier)
		return nil, err
	}

	tok, err = withHashSlot(ctx, s, func() (*auth.Token, error) {
		return s.auth.Login(identifier, plain, acc.PasswordHash)
	})
	if err != nil {
		s.logger.Info(ctx, "login rejected", "identifier", identifier)
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "identifier", identifier)
	return tok, nil
}

// AuthenticateRequest returns the subject of a valid bearer token.
func (s *UserService) AuthenticateRequest(ctx context.Context, token string) (sub string, err error) {
	defer func() { s.metrics.Observe(metrics.OpAuthenticate, err) }()
	return s.auth.AuthenticateRequest(token)
}

// Profile loads the account a token subject refers to.
func (s *UserService) Profile(ctx context.Context, subject string) (*models.Account, error) {
	acc, err := s.lookup(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return acc, nil
}

// ChangePassword replaces the password of the subject's account. Outstanding
// tokens are not revoked.
func (s *UserService) ChangePassword(ctx context.Context, subject, oldPlain, newPlain, confirmPlain string) (err error) {
	defer func() { s.metrics.Observe(metrics.OpChangePassword, err) }()

	acc, err := s.Profile(ctx, subject)
	if err != nil {
		return err
	}

	hash, err := withHashSlot(ctx, s, func() (string, error) {
		return s.auth.ChangePassword(oldPlain, newPlain, confirmPlain, acc.PasswordHash)
	})
	if err != nil {
		return err
	}

	acc.PasswordHash = hash
	if _, err := s.repo.Save(ctx, acc); err != nil {
		s.logger.Error(ctx, "saving password failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "username", acc.UserName)
	return nil
}

// --- helpers below ---

func (s *UserService) lookup(ctx context.Context, identifier string) (*models.Account, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.FindByEmail(ctx, identifier)
	}
	return s.repo.FindByUsername(ctx, identifier)
}

func (s *UserService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.Account, error), key string, taken error) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return common.ErrorInternal
	}
}

// withHashSlot runs fn once a hashing slot is free, so bursts of logins
// cannot occupy every CPU.
func withHashSlot[T any](ctx context.Context, s *UserService, fn func() (T, error)) (T, error) {
	var zero T
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer s.hashSlots.Release(1)

	done := s.metrics.HashStarted()
	defer done()

	return fn()
}
