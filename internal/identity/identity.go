// Package identity carries the authenticated user handed to the interview
// core. Credentials are managed elsewhere; this package only transports the
// result of authentication.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Header names set by the authenticating proxy in front of the HTTP API.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

// ErrMissing is returned when a request carries no identity.
var ErrMissing = errors.New("identity: no authenticated user")

// Identity is the externally authenticated user.
type Identity struct {
	ExternalID  string `yaml:"external_id" json:"externalId"`
	DisplayName string `yaml:"name" json:"displayName"`
	Email       string `yaml:"email" json:"email"`
}

// Valid reports whether the identity has an external id.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.ExternalID) != ""
}

// Local is the identity used by the terminal UI and CLI when no
// authentication layer exists.
func Local() Identity {
	return Identity{
		ExternalID:  "local-user",
		DisplayName: "Local User",
		Email:       "local@mockprep.invalid",
	}
}

type ctxKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored on ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.Valid()
}

// FromRequest reads the proxy headers.
func FromRequest(r *http.Request) (Identity, error) {
	id := Identity{
		ExternalID:  strings.TrimSpace(r.Header.Get(HeaderUserID)),
		DisplayName: strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Email:       strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
	}
	if !id.Valid() {
		return Identity{}, ErrMissing
	}
	return id, nil
}

// Middleware rejects requests without identity headers and stores the
// identity on the request context for downstream handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := FromRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
