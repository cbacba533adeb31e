package token

import (
	"context"
	"net/http"
	"strings"

	commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"
	commonhttp "github.com/HarryOMalley/eagle-bank/internal/common/http"
	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
)

type contextKey string

const claimsKey contextKey = "token_claims"

// Middleware verifies the bearer token and stores the Claims in the request
// context. Handlers read them with FromContext and pass Claims.Subject into
// services explicitly; no client-supplied identity is ever trusted.
func Middleware(issuer *Issuer, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := ExtractTokenFromHeader(r)
			if !ok {
				log.Warnf("auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonerrors.ErrInvalidToken.Code(), "missing or invalid authorization", nil, "")
				return
			}

			claims, err := issuer.Verify(raw)
			if err != nil {
				log.Warnf("auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonerrors.ErrInvalidToken.Code(), commonerrors.ErrInvalidToken.Message(), nil, "")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func ExtractTokenFromHeader(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(raw, "Bearer "), true
}
