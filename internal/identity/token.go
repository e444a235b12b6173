package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks HS256 bearer tokens and turns their subject into a Caller.
type Verifier struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewVerifier(secret []byte, issuer, audience string) *Verifier {
	return &Verifier{
		key:      secret,
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// Verify parses raw and returns the caller named by its subject.
func (v *Verifier) Verify(raw string) (Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Anonymous, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Caller(claims.Subject), nil
}

// Issue signs a token for c valid for ttl. Used by tooling and tests.
func (v *Verifier) Issue(c Caller, ttl time.Duration) (string, error) {
	if c.IsAnonymous() {
		return "", fmt.Errorf("%w: cannot issue a token for the anonymous caller", ErrInvalidToken)
	}

	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   string(c),
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
