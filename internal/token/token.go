// Package token issues and verifies the HS256 bearer tokens handed out at
// login.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// ErrInvalid is returned for malformed, forged or expired tokens.
var ErrInvalid = errors.New("token is invalid or expired")

type claims struct {
	UserName string      `json:"unique_name"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a shared secret.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a Service. The secret must not be empty.
func NewService(secret, issuer string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Service{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for p and its expiry time.
func (s *Service) Issue(p domain.Principal) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	c := &claims{
		UserName: p.UserName,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.UserID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses raw and returns the principal it was issued for.
func (s *Service) Verify(raw string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return domain.Principal{}, ErrInvalid
	}

	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return domain.Principal{}, ErrInvalid
	}
	return domain.Principal{UserID: uint(id), UserName: c.UserName, Role: c.Role}, nil
}
