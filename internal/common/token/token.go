package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HarryOMalley/eagle-bank/internal/common/clock"
	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	"github.com/HarryOMalley/eagle-bank/internal/observability/metrics"
)

// Claims is the verified identity handed to downstream logic. Subject is
// the user id; it is the only identity handlers may trust.
type Claims struct {
	Subject string
	Email   string
}

// Issuer mints and verifies stateless HS256 access tokens. Validity is a
// pure function of signature and expiry; there is no revocation list.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, clk clock.Clock) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(subject, email string) (string, error) {
	now := i.clock.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	return signed, nil
}

func (i *Issuer) Verify(tokenString string) (Claims, error) {
	return Verify(tokenString, i.secret, i.clock)
}

// Verify recovers the identity from a signed token. Signature mismatch,
// wrong signing method, malformed claims and expiry all collapse into the
// same ErrInvalidToken.
func Verify(tokenString string, secret []byte, clk clock.Clock) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()

	parsed, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, commonerrors.ErrInvalidToken
			}
			return secret, nil
		},
		jwt.WithTimeFunc(clk.Now),
	)
	if err != nil || !parsed.Valid {
		metrics.JWTValidationsFailed.Inc()
		if err != nil {
			return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	if sub == "" || email == "" {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrInvalidToken
	}

	return Claims{
		Subject: sub,
		Email:   email,
	}, nil
}
