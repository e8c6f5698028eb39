package apikeys

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is the repository miss. Authority callers never see it.
	ErrNotFound = errors.New("api key not found")

	// ErrInvalidCredential covers absent, revoked and expired keys alike.
	ErrInvalidCredential = errors.New("invalid api key")

	ErrOwnerRequired = errors.New("api key owner is required")
	ErrInvalidName   = errors.New("api key name must be between 1 and 100 characters")
	ErrInvalidExpiry = errors.New("expiresInDays must be a positive number of days")
)

type Repository interface {
	Create(ctx context.Context, key *APIKey) error
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]*APIKey, error)
	Revoke(ctx context.Context, id, ownerID string) (bool, error)
	UpdateLastUsed(ctx context.Context, id string, at time.Time) error
}
