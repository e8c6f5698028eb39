package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/db"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/jackc/pgx/v5"
)

type APIKeysRepository struct {
	q querier
}

func NewAPIKeysRepository(p *db.Postgres) (*APIKeysRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &APIKeysRepository{q: p.Pool}, nil
}

const apiKeyColumns = `id, key_hash, prefix, owner_id, name, created_at, last_used_at, expires_at, revoked`

func (r *APIKeysRepository) Create(ctx context.Context, key *apikeys.APIKey) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO api_keys (`+apiKeyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		key.ID, key.KeyHash, key.Prefix, key.OwnerID, key.Name,
		key.CreatedAt.UTC(), key.LastUsedAt, key.ExpiresAt, key.Revoked,
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *APIKeysRepository) FindByHash(ctx context.Context, keyHash string) (*apikeys.APIKey, error) {
	key, err := scanAPIKey(r.q.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, keyHash))
	if err == nil {
		return key, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apikeys.ErrNotFound
	}
	return nil, fmt.Errorf("find api key: %w", err)
}

func (r *APIKeysRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*apikeys.APIKey, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE owner_id = $1 AND NOT revoked
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	out := make([]*apikeys.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return out, nil
}

func (r *APIKeysRepository) Revoke(ctx context.Context, id, ownerID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE api_keys SET revoked = TRUE WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("revoke api key: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *APIKeysRepository) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apikeys.ErrNotFound
	}
	return nil
}

func scanAPIKey(row pgx.Row) (*apikeys.APIKey, error) {
	var k apikeys.APIKey
	err := row.Scan(&k.ID, &k.KeyHash, &k.Prefix, &k.OwnerID, &k.Name,
		&k.CreatedAt, &k.LastUsedAt, &k.ExpiresAt, &k.Revoked)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
