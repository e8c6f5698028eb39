package links

import (
	"context"
	"errors"
)

var (
	ErrNotFound             = errors.New("link not found")
	ErrSlugTaken            = errors.New("slug taken")
	ErrSlugAllocationFailed = errors.New("could not allocate a unique slug")
	ErrForbidden            = errors.New("link is not owned by requester")
)

// LinkRepository is the record store for links. Insert must be an atomic
// create-if-absent on slug and report a duplicate as ErrSlugTaken.
type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*Link, error)
	FindByID(ctx context.Context, id string) (*Link, error)
	IncrementClicks(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Link, error)
	StatsByOwner(ctx context.Context, ownerID string) (OwnerStats, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type Slugger interface {
	Generate(length int) (string, error)
}
