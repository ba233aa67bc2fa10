package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process. Suitable for development and a
// single instance only.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Create(_ context.Context, identity types.Identity) (string, error) {
	token := newToken()
	s.cache.Set(token, identity, s.ttl)
	return token, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (types.Identity, error) {
	v, found := s.cache.Get(token)
	if !found {
		return types.Identity{}, types.ErrSessionNotFound
	}
	identity, ok := v.(types.Identity)
	if !ok {
		return types.Identity{}, types.ErrSessionNotFound
	}
	return identity, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.cache.Delete(token)
	return nil
}
