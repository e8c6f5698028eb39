package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/IgorGrieder/slugs/internal/infrastructure/db"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// querier is the subset of pgxpool.Pool the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type LinksRepository struct {
	q querier
}

func NewLinksRepository(p *db.Postgres) (*LinksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &LinksRepository{q: p.Pool}, nil
}

const linkColumns = `id, slug, url, COALESCE(owner_id, ''), clicks, created_at`

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO links (id, slug, url, owner_id, clicks, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		link.ID, link.Slug, link.URL, link.OwnerID, link.Clicks, link.CreatedAt.UTC(),
	)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return links.ErrSlugTaken
	}
	return fmt.Errorf("insert link: %w", err)
}

func (r *LinksRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *LinksRepository) FindBySlug(ctx context.Context, slug string) (*links.Link, error) {
	return r.findOne(ctx, `SELECT `+linkColumns+` FROM links WHERE slug = $1`, slug)
}

func (r *LinksRepository) FindByID(ctx context.Context, id string) (*links.Link, error) {
	return r.findOne(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id)
}

func (r *LinksRepository) findOne(ctx context.Context, query string, arg string) (*links.Link, error) {
	link, err := scanLink(r.q.QueryRow(ctx, query, arg))
	if err == nil {
		return link, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	return nil, fmt.Errorf("find link: %w", err)
}

func (r *LinksRepository) IncrementClicks(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return links.ErrNotFound
	}
	return nil
}

func (r *LinksRepository) ListByOwner(ctx context.Context, ownerID string) ([]*links.Link, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+linkColumns+` FROM links WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	out := make([]*links.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return out, nil
}

func (r *LinksRepository) StatsByOwner(ctx context.Context, ownerID string) (links.OwnerStats, error) {
	var stats links.OwnerStats
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(clicks), 0)::BIGINT FROM links WHERE owner_id = $1`, ownerID,
	).Scan(&stats.TotalURLs, &stats.TotalClicks)
	if err != nil {
		return links.OwnerStats{}, fmt.Errorf("owner stats: %w", err)
	}
	return stats, nil
}

func (r *LinksRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanLink(row pgx.Row) (*links.Link, error) {
	var l links.Link
	if err := row.Scan(&l.ID, &l.Slug, &l.URL, &l.OwnerID, &l.Clicks, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
