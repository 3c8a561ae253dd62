package jobly

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/vault"
)

// Claims are sealed into bearer tokens.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	IssuedAt int64  `json:"iat"`
}

// CreateToken seals the username and admin flag of user into a bearer token.
func CreateToken(v vault.Vault, user joblymodels.User) (string, error) {
	claims, err := json.Marshal(Claims{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		return "", err
	}

	token, err := v.Encrypt(claims)
	if err != nil {
		return "", err
	}

	return string(token), nil
}

// ParseToken opens a token made by CreateToken. Anything else gives
// ErrUnauthorized.
func ParseToken(v vault.Vault, token string) (Claims, error) {
	raw, err := v.Decrypt([]byte(token))
	if err != nil {
		return Claims{}, ErrUnauthorized
	}

	claims := Claims{}
	if err := json.Unmarshal(raw, &claims); err != nil || claims.Username == "" {
		return Claims{}, ErrUnauthorized
	}

	return claims, nil
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims of the token that authorized the
// request, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(Claims)

	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func (app *App) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, found := bearerToken(r)
		if !found || app.vault == nil {
			app.respondError(w, r, ErrUnauthorized)
			return
		}

		claims, err := ParseToken(*app.vault, token)
		if err != nil || !claims.IsAdmin {
			app.respondError(w, r, ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey{}, claims)))
	})
}
