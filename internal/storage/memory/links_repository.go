// Package memory holds process-local stores for development and tests.
// Nothing here survives a restart or is shared between instances.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/IgorGrieder/slugs/internal/processing/links"
)

type LinksRepository struct {
	mu     sync.RWMutex
	byID   map[string]*links.Link
	bySlug map[string]string // slug -> id
}

func NewLinksRepository() *LinksRepository {
	return &LinksRepository{
		byID:   make(map[string]*links.Link),
		bySlug: make(map[string]string),
	}
}

func (r *LinksRepository) Insert(_ context.Context, link *links.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[link.Slug]; ok {
		return links.ErrSlugTaken
	}
	cp := *link
	r.byID[cp.ID] = &cp
	r.bySlug[cp.Slug] = cp.ID
	return nil
}

func (r *LinksRepository) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySlug[slug]
	return ok, nil
}

func (r *LinksRepository) FindBySlug(_ context.Context, slug string) (*links.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, links.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *LinksRepository) FindByID(_ context.Context, id string) (*links.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.byID[id]
	if !ok {
		return nil, links.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *LinksRepository) IncrementClicks(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byID[id]
	if !ok {
		return links.ErrNotFound
	}
	link.Clicks++
	return nil
}

func (r *LinksRepository) ListByOwner(_ context.Context, ownerID string) ([]*links.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*links.Link, 0)
	for _, link := range r.byID {
		if link.OwnerID == ownerID {
			cp := *link
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *LinksRepository) StatsByOwner(_ context.Context, ownerID string) (links.OwnerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats links.OwnerStats
	for _, link := range r.byID {
		if link.OwnerID == ownerID {
			stats.TotalURLs++
			stats.TotalClicks += link.Clicks
		}
	}
	return stats, nil
}

func (r *LinksRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.bySlug, link.Slug)
	delete(r.byID, id)
	return true, nil
}
