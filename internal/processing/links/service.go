package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/IgorGrieder/slugs/internal/processing/links")

// maxSlugAttempts bounds generated-slug allocation. Pre-check collisions and
// duplicate-key failures at insert both consume an attempt.
const maxSlugAttempts = 2

type ServiceOptions struct {
	SlugLength int

	// AsyncClicks moves the click increment off the request path.
	AsyncClicks  bool
	ClickTimeout time.Duration
}

type Service struct {
	repo         LinkRepository
	validator    *URLValidator
	slugger      Slugger
	slugLength   int
	asyncClicks  bool
	clickTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

func NewService(repo LinkRepository, validator *URLValidator, slugger Slugger, opts ServiceOptions) *Service {
	if opts.SlugLength <= 0 {
		opts.SlugLength = DefaultSlugLength
	}
	if opts.ClickTimeout <= 0 {
		opts.ClickTimeout = 2 * time.Second
	}
	if validator == nil {
		validator = NewURLValidator()
	}

	return &Service{
		repo:         repo,
		validator:    validator,
		slugger:      slugger,
		slugLength:   opts.SlugLength,
		asyncClicks:  opts.AsyncClicks,
		clickTimeout: opts.ClickTimeout,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, in CreateLinkInput) (link *Link, err error) {
	ctx, span := tracer.Start(ctx, "links.Create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("link.slug", link.Slug))
		}
		span.End()
	}()

	normalizedURL, err := s.validator.Validate(in.URL)
	if err != nil {
		return nil, err
	}

	customSlug := strings.TrimSpace(in.CustomSlug)
	if customSlug != "" {
		if err := ValidateSlug(customSlug); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Bool("link.custom_slug", customSlug != ""))

	pending := &Link{
		URL:       normalizedURL,
		OwnerID:   strings.TrimSpace(in.OwnerID),
		CreatedAt: s.now().UTC(),
	}

	if customSlug != "" {
		return s.insertCustom(ctx, pending, customSlug)
	}
	return s.insertGenerated(ctx, pending)
}

// insertCustom never retries: the caller asked for this exact slug.
func (s *Service) insertCustom(ctx context.Context, link *Link, slug string) (*Link, error) {
	taken, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("check slug %q: %w", slug, err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	link.ID = s.newID()
	link.Slug = slug
	if err := s.repo.Insert(ctx, link); err != nil {
		return nil, err
	}

	linksCreatedTotal.WithLabelValues("custom").Inc()
	return link, nil
}

func (s *Service) insertGenerated(ctx context.Context, link *Link) (*Link, error) {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := s.slugger.Generate(s.slugLength)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		taken, err := s.repo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("check slug %q: %w", slug, err)
		}
		if taken {
			slugCollisionsTotal.Inc()
			logger.Warn("generated slug collision", zap.String("slug", slug), zap.Int("attempt", attempt))
			continue
		}

		link.ID = s.newID()
		link.Slug = slug
		if err := s.repo.Insert(ctx, link); err != nil {
			if errors.Is(err, ErrSlugTaken) {
				slugCollisionsTotal.Inc()
				logger.Warn("generated slug lost insert race", zap.String("slug", slug), zap.Int("attempt", attempt))
				continue
			}
			return nil, err
		}

		linksCreatedTotal.WithLabelValues("generated").Inc()
		return link, nil
	}

	return nil, ErrSlugAllocationFailed
}

// Resolve looks up slug and counts a click. The returned link carries the
// pre-increment click count.
func (s *Service) Resolve(ctx context.Context, slug string) (*Link, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}

	ctx, span := tracer.Start(ctx, "links.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("link.slug", slug))

	link, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	s.recordClick(ctx, link.ID, link.Slug)
	return link, nil
}

func (s *Service) recordClick(ctx context.Context, id, slug string) {
	if s.asyncClicks {
		go func() {
			clickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.clickTimeout)
			defer cancel()
			s.incrementClicks(clickCtx, id, slug)
		}()
		return
	}

	clickCtx, cancel := context.WithTimeout(ctx, s.clickTimeout)
	defer cancel()
	s.incrementClicks(clickCtx, id, slug)
}

func (s *Service) incrementClicks(ctx context.Context, id, slug string) {
	if err := s.repo.IncrementClicks(ctx, id); err != nil {
		clickFailuresTotal.Inc()
		logger.Warn("failed to record click", zap.Error(err), zap.String("slug", slug), zap.String("link_id", id))
	}
}

func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]*Link, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return []*Link{}, nil
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) StatsForOwner(ctx context.Context, ownerID string) (OwnerStats, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return OwnerStats{}, nil
	}
	return s.repo.StatsByOwner(ctx, ownerID)
}

// Delete removes a link owned by requesterID. Anonymous links cannot be
// deleted through this path.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if link.OwnerID == "" || link.OwnerID != requesterID {
		return ErrForbidden
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
