package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature, structure or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines JWT payload. The subject carries the username.
type Claims struct {
	jwtlib.RegisteredClaims
}

// Signer issues and verifies HMAC-signed access tokens.
type Signer struct {
	method *jwtlib.SigningMethodHMAC
	secret []byte
	issuer string
	now    func() time.Time
}

// Option customises a Signer.
type Option func(*Signer)

// WithIssuer sets the iss claim written and required by the signer.
func WithIssuer(issuer string) Option {
	return func(s *Signer) {
		s.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSigner builds a Signer for one of HS256, HS384 or HS512.
func NewSigner(secret, algorithm string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	method, ok := jwtlib.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm))).(*jwtlib.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	s := &Signer{method: method, secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for subject that expires after ttl.
func (s *Signer) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, errors.New("token subject required")
	}
	now := s.now()
	expires := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expires),
		},
	}
	token, err := jwtlib.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Verify validates token and returns its claims. All failures wrap ErrInvalidToken.
func (s *Signer) Verify(token string) (*Claims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{s.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
