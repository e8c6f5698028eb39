package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
)

var errDuplicateKeyHash = errors.New("api key hash already exists")

type APIKeysRepository struct {
	mu     sync.RWMutex
	byID   map[string]*apikeys.APIKey
	byHash map[string]string // keyHash -> id
}

func NewAPIKeysRepository() *APIKeysRepository {
	return &APIKeysRepository{
		byID:   make(map[string]*apikeys.APIKey),
		byHash: make(map[string]string),
	}
}

func (r *APIKeysRepository) Create(_ context.Context, key *apikeys.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHash[key.KeyHash]; ok {
		return errDuplicateKeyHash
	}
	cp := *key
	r.byID[cp.ID] = &cp
	r.byHash[cp.KeyHash] = cp.ID
	return nil
}

func (r *APIKeysRepository) FindByHash(_ context.Context, keyHash string) (*apikeys.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[keyHash]
	if !ok {
		return nil, apikeys.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *APIKeysRepository) ListActiveByOwner(_ context.Context, ownerID string) ([]*apikeys.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*apikeys.APIKey, 0)
	for _, key := range r.byID {
		if key.OwnerID == ownerID && !key.Revoked {
			cp := *key
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *APIKeysRepository) Revoke(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.byID[id]
	if !ok || key.OwnerID != ownerID {
		return false, nil
	}
	key.Revoked = true
	return true, nil
}

func (r *APIKeysRepository) UpdateLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.byID[id]
	if !ok {
		return apikeys.ErrNotFound
	}
	key.LastUsedAt = &at
	return nil
}
