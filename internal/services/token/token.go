// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token signs and verifies the bearer tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrEmptySecret  = errors.New("token secret must not be empty")
)

// Claims are the registered claims carried by a bearer token. Subject
// holds the username and ID a unique token id.
type Claims struct {
	jwt.RegisteredClaims
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer creates and validates HS256 tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewIssuer creates an Issuer. issuer and audience may be empty.
func NewIssuer(secret []byte, issuer, audience string) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: secret, issuer: issuer, audience: audience, now: time.Now}, nil
}

// Issue signs a token for username valid for ttl.
func (i *Issuer) Issue(username string, ttl time.Duration) (*Issued, error) {
	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Issued{
		Token:     signed,
		ID:        claims.ID,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, expiry, issuer and audience and returns the claims.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
