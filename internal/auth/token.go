package auth

import (
	"context"
	"errors"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error)
}

// Verifier checks access tokens against the provider's signing keys.
type Verifier struct {
	Issuer string
	keys   func(ctx context.Context) (jwk.Set, error)
}

// NewVerifier fetches the key set from config.JWKsURI on every call.
func NewVerifier(config *Config) *Verifier {
	jwksUri := config.JWKsURI
	return &Verifier{
		Issuer: config.BaseUri,
		keys: func(ctx context.Context) (jwk.Set, error) {
			return jwk.Fetch(ctx, jwksUri)
		},
	}
}

func NewStaticVerifier(issuer string, keys jwk.Set) *Verifier {
	return &Verifier{
		Issuer: issuer,
		keys: func(context.Context) (jwk.Set, error) {
			return keys, nil
		},
	}
}

func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error) {
	if tokenString == "" {
		return nil, errors.New("no token provided")
	}

	jwks, err := v.keys(ctx)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseString(tokenString,
		jwt.WithKeySet(jwks),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.Issuer),
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}
