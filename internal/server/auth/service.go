package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/password"
)

// Token is what a successful login hands back to the client.
type Token struct {
	AccessToken string    `json:"token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenIssuer mints and checks identity tokens.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Service is the stateless AuthenticationService. It owns no storage: callers
// pass in stored hashes and persist the hashes it returns.
//
// All methods are safe for concurrent use.
type Service struct {
	hasher Hasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewService composes a hasher and a token issuer.
func NewService(h Hasher, t TokenIssuer) *Service {
	return &Service{hasher: h, tokens: t}
}

// PrepareRegistration checks plain against the password policy and, only if
// it is accepted, returns its hash. Rejections are *password.RejectedError.
func (s *Service) PrepareRegistration(plain string) (string, error) {
	if err := password.Validate(plain); err != nil {
		return "", err
	}
	return s.hash(plain)
}

// Login verifies supplied against storedHash and issues a token for
// identifier. Any mismatch, including a malformed stored hash, is
// common.ErrInvalidCredentials.
func (s *Service) Login(identifier, supplied, storedHash string) (*Token, error) {
	if !s.hasher.Verify(supplied, storedHash) {
		return nil, common.ErrInvalidCredentials
	}

	tokenString, exp, err := s.tokens.Issue(identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &Token{AccessToken: tokenString, TokenType: common.TokenType, ExpiresAt: exp}, nil
}

// RejectUnknown is the Login path for an identifier with no account. It
// spends the same hashing work as a real comparison and always fails with
// common.ErrInvalidCredentials, so callers cannot tell the two cases apart.
func (s *Service) RejectUnknown(supplied string) error {
	s.dummyOnce.Do(func() {
		// any well-formed hash at the configured cost will do
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	s.hasher.Verify(supplied, s.dummyHash)
	return common.ErrInvalidCredentials
}

// AuthenticateRequest returns the subject of a valid token. Failures are
// common.ErrTokenExpired or common.ErrInvalidToken.
func (s *Service) AuthenticateRequest(token string) (string, error) {
	return s.tokens.Verify(token)
}

// ChangePassword returns the hash of newPlain once confirmPlain matches it
// exactly, oldPlain verifies against storedHash and newPlain passes the
// policy, checked in that order. Tokens issued before the change stay valid
// until they expire.
func (s *Service) ChangePassword(oldPlain, newPlain, confirmPlain, storedHash string) (string, error) {
	if newPlain != confirmPlain {
		return "", common.ErrPasswordMismatch
	}
	if !s.hasher.Verify(oldPlain, storedHash) {
		return "", common.ErrInvalidCredentials
	}
	if err := password.Validate(newPlain); err != nil {
		return "", err
	}
	return s.hash(newPlain)
}

func (s *Service) hash(plain string) (string, error) {
	h, err := s.hasher.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return h, nil
}
