package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type ctxKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// TokenFromRequest reads the Authorization header, then the token query
// parameter (browsers cannot set headers on websocket handshakes).
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Authorize parses the request token and checks it against restaurantID.
func Authorize(r *http.Request, secret []byte, restaurantID string) (*Claims, error) {
	claims, err := ParseToken(TokenFromRequest(r), secret)
	if err != nil {
		return nil, err
	}
	if restaurantID != "" && !strings.EqualFold(claims.RestaurantID, restaurantID) {
		return nil, ErrForbidden
	}
	return claims, nil
}

// RequireOwner guards routes whose {id} path variable is a restaurant id.
// Routes without one only need a valid token.
func RequireOwner(secret []byte) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := Authorize(r, secret, mux.Vars(r)["id"])
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusUnauthorized)
	}
}
