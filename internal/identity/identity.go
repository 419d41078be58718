package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// ErrUnauthorized indicates a missing or invalid bearer credential.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is what the external identity provider vouches for.
type Identity struct {
	UID   string
	Email string
	Name  string
	Plan  string
}

// IsPlusMember reports membership-tier eligibility for member-only coupons.
func (i Identity) IsPlusMember() bool {
	return i.Plan == "plus"
}

// Verifier validates a bearer credential and yields the identity behind it.
type Verifier interface {
	Verify(ctx context.Context, bearer string) (Identity, error)
}

// JWTVerifier checks HS256-signed tokens minted by the identity provider.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, bearer string) (Identity, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" || len(v.secret) == 0 {
		return Identity{}, ErrUnauthorized
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(bearer, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return Identity{}, ErrUnauthorized
	}

	uid, _ := claims["sub"].(string)
	if uid == "" {
		uid, _ = claims["uid"].(string)
	}
	if uid == "" {
		return Identity{}, ErrUnauthorized
	}

	id := Identity{UID: uid}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Plan, _ = claims["plan"].(string)
	return id, nil
}
