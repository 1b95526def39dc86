package identity

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	dErrors "farmgate/pkg/domain-errors"
)

// assertionClaims is the expected shape of a proxy-minted identity assertion.
// The admin flag is intentionally absent: it is derived from groups only.
type assertionClaims struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
	jwt.RegisteredClaims
}

// JWTResolver validates identity assertions signed by the auth proxy with a
// shared HMAC key. This avoids a round-trip to the identity provider for
// deployments where the proxy mints short-lived assertion tokens.
type JWTResolver struct {
	key []byte
}

// NewJWTResolver constructs a resolver for HS256-signed assertions.
func NewJWTResolver(signingKey string) *JWTResolver {
	return &JWTResolver{key: []byte(signingKey)}
}

// Resolve implements Resolver for locally-validated bearer assertions.
func (jr *JWTResolver) Resolve(r *http.Request) (Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "missing bearer token")
	}

	var claims assertionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jr.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "invalid identity assertion")
	}
	if !parsed.Valid {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "invalid identity assertion")
	}
	if claims.Username == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "assertion missing username")
	}

	return New(claims.Username, claims.Email, claims.Groups), nil
}
