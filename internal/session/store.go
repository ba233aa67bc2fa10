// Package session keeps authenticated identities in a store that lives
// outside the request, keyed by an opaque token carried in a signed cookie.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

// Store persists session payloads. Implementations must expire entries after
// the TTL they were built with and return types.ErrSessionNotFound for
// unknown, expired or malformed tokens.
type Store interface {
	Create(ctx context.Context, identity types.Identity) (string, error)
	Get(ctx context.Context, token string) (types.Identity, error)
	Destroy(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}
