// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Principal Kinds

const (
	// KindUser marks tokens minted for end users (patients and doctors).
	KindUser = "user"

	// KindAdmin marks tokens minted for back-office administrators.
	KindAdmin = "admin"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why a profile snapshot?
//
// The mobile clients render the account screen straight from the token, and
// the middleware can reconstruct the active user context WITHOUT querying the
// database on every single API request. The snapshot is refreshed whenever a
// new token pair is issued.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID      int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Type        int    `json:"type"`
	Status      int    `json:"status"`
	Photo       string `json:"photo,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
	Subject     string `json:"subject,omitempty"`

	// Kind distinguishes user tokens from admin tokens; Level is the admin
	// privilege tier and is zero for user tokens.
	Kind  string `json:"kind"`
	Level int    `json:"level,omitempty"`
}

// CodeClaims is the signed envelope wrapped around an activation or
// reset-password code. The envelope binds the code to the email it was
// issued for, so a code cannot be replayed against another account.
type CodeClaims struct {
	jwt.RegisteredClaims

	Code  string `json:"activation_code"`
	Email string `json:"email"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService signing with the shared secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: jwt secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// GenerateToken signs the given claims with the configured lifetime.
// The same routine mints both access and refresh tokens; they differ only
// in their time-to-live.
func (service *TokenService) GenerateToken(claims AuthClaims, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims.Issuer = service.issuer
	claims.Subject = fmt.Sprintf("%d", claims.UserID)
	claims.IssuedAt = jwt.NewNumericDate(currentTime)
	claims.ExpiresAt = jwt.NewNumericDate(currentTime.Add(timeToLive))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity (including expiry) of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	return service.parseAuthClaims(tokenString)
}

// VerifyExpiredToken checks the signature of a JWT string while skipping
// claim validation. Token refresh uses this: an expired access/refresh token
// is still trusted for identity as long as its signature is intact, and the
// session store decides whether the refresh is allowed.
func (service *TokenService) VerifyExpiredToken(tokenString string) (*AuthClaims, error) {
	return service.parseAuthClaims(tokenString, jwt.WithoutClaimsValidation())
}

func (service *TokenService) parseAuthClaims(tokenString string, options ...jwt.ParserOption) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, service.keyFunc, options...)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// GenerateCodeEnvelope signs a short-lived envelope binding a numeric code to
// an email address. The envelope is persisted alongside the code row and is
// what activation links carry.
func (service *TokenService) GenerateCodeEnvelope(code, email string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := CodeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Code:  code,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign code envelope: %w", err)
	}

	return signedToken, nil
}

// VerifyCodeEnvelope checks the signature of a code envelope. Expiry is NOT
// enforced here: the owning service compares the code row's creation time
// against its TTL so that stale rows can be transitioned to expired state.
func (service *TokenService) VerifyCodeEnvelope(envelope string) (*CodeClaims, error) {
	token, err := jwt.ParseWithClaims(envelope, &CodeClaims{}, service.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("sec: invalid code envelope: %w", err)
	}

	claims, ok := token.Claims.(*CodeClaims)
	if !ok {
		return nil, fmt.Errorf("sec: invalid code envelope claims")
	}

	return claims, nil
}

func (service *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
	}
	return service.secret, nil
}
