// Package auth holds the credential core: password hashing, signed identity
// tokens and the AuthenticationService composing them with the password policy.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of an issued token. There is no refresh
// mechanism; clients re-authenticate after expiry.
const DefaultTokenTTL = 5 * time.Minute

// Issuer creates and verifies HS256-signed identity tokens carrying
// sub, iat and exp claims.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.ttl = d
		}
	}
}

// WithLeeway tolerates clock skew when checking exp. Zero by default.
func WithLeeway(d time.Duration) IssuerOption {
	return func(i *Issuer) { i.leeway = d }
}

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer signing with secretKey.
func NewIssuer(secretKey []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("empty signing secret")
	}

	i := &Issuer{
		secret: secretKey,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// TTL returns the lifetime of tokens minted by Issue.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for subject valid from now until now+TTL.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := i.now()
	exp := jwt.NewNumericDate(now.Add(i.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, exp.Time, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// subject. It fails with common.ErrTokenExpired once exp has passed and with
// common.ErrInvalidToken for anything else that is wrong with the token.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(i.leeway),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
