// Package auth verifies bearer tokens minted by the hosted identity provider.
// Sign-in itself happens at the provider; this service only checks the
// signature and reads the owner id from the subject claim.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
)

var (
	ErrMissingToken = apperror.New(apperror.KindAuthorization, "unauthenticated", "missing bearer token")
	ErrInvalidToken = apperror.New(apperror.KindAuthorization, "unauthenticated", "invalid or expired token")
	ErrNoSecret     = apperror.New(apperror.KindConfiguration, "auth_not_configured", "token verification secret is not configured")
)

// Identity is the authenticated caller.
type Identity struct {
	OwnerID  uuid.UUID
	Email    string
	FullName *string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims follows the provider's access token layout.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata,omitempty"`
}

type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

type jwtVerifier struct {
	secret   []byte
	issuer   string
	audience string
	clock    clock.Clock
}

func NewVerifier(cfg config.Config, clk clock.Clock) (Verifier, error) {
	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &jwtVerifier{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.Auth.Issuer),
		audience: strings.TrimSpace(cfg.Auth.Audience),
		clock:    clk,
	}, nil
}

func (v *jwtVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return v.clock.Now(ctx) }),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, apperror.Wrap(ErrInvalidToken, err)
	}

	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(ErrInvalidToken, errors.New("subject is not a uuid"))
	}

	identity := &Identity{OwnerID: ownerID, Email: claims.Email}
	if name := strings.TrimSpace(claims.UserMetadata.FullName); name != "" {
		identity.FullName = &name
	}
	return identity, nil
}
