package apikeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 100

// Authority issues, validates and revokes API keys.
type Authority struct {
	repo     Repository
	now      func() time.Time
	newID    func() string
	generate func() (string, error)
}

func NewAuthority(repo Repository) *Authority {
	return &Authority{
		repo:     repo,
		now:      time.Now,
		newID:    uuid.NewString,
		generate: generateSecret,
	}
}

// Issue creates a key for ownerID. expiresInDays nil means the key never
// expires.
func (a *Authority) Issue(ctx context.Context, ownerID, name string, expiresInDays *int) (*IssuedKey, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return nil, ErrInvalidName
	}
	if expiresInDays != nil && *expiresInDays <= 0 {
		return nil, ErrInvalidExpiry
	}

	secret, err := a.generate()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	now := a.now().UTC()
	key := APIKey{
		ID:        a.newID(),
		KeyHash:   HashSecret(secret),
		Prefix:    displayPrefix(secret),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
	}
	if expiresInDays != nil {
		exp := now.Add(time.Duration(*expiresInDays) * 24 * time.Hour)
		key.ExpiresAt = &exp
	}

	if err := a.repo.Create(ctx, &key); err != nil {
		return nil, fmt.Errorf("save api key: %w", err)
	}

	logger.Info("api key issued",
		zap.String("key_id", key.ID),
		zap.String("owner_id", ownerID),
		zap.String("prefix", key.Prefix),
	)
	return &IssuedKey{APIKey: key, Secret: secret}, nil
}

// Validate returns the key for secret if it is currently usable. It has no
// side effects; call Touch after a successful authenticated use.
func (a *Authority) Validate(ctx context.Context, secret string) (*APIKey, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidCredential
	}

	key, err := a.repo.FindByHash(ctx, HashSecret(secret))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}

	if !key.UsableAt(a.now()) {
		logger.Debug("api key rejected", zap.String("key_id", key.ID), zap.Bool("revoked", key.Revoked))
		return nil, ErrInvalidCredential
	}

	return key, nil
}

func (a *Authority) Touch(ctx context.Context, id string) error {
	return a.repo.UpdateLastUsed(ctx, id, a.now().UTC())
}

// Revoke is a no-op when id does not belong to ownerID, so callers cannot
// probe for other owners' keys.
func (a *Authority) Revoke(ctx context.Context, id, ownerID string) error {
	id = strings.TrimSpace(id)
	ownerID = strings.TrimSpace(ownerID)
	if id == "" || ownerID == "" {
		return nil
	}

	revoked, err := a.repo.Revoke(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if revoked {
		logger.Info("api key revoked", zap.String("key_id", id), zap.String("owner_id", ownerID))
	}
	return nil
}

// ListForOwner returns the owner's non-revoked keys, newest first.
func (a *Authority) ListForOwner(ctx context.Context, ownerID string) ([]*APIKey, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return []*APIKey{}, nil
	}
	return a.repo.ListActiveByOwner(ctx, ownerID)
}
