package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/db"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const linksCollection = "links"

type LinksRepository struct {
	coll *mongo.Collection
}

type linkDoc struct {
	ID        string    `bson:"_id"`
	Slug      string    `bson:"slug"`
	URL       string    `bson:"url"`
	OwnerID   string    `bson:"ownerId,omitempty"`
	Clicks    int64     `bson:"clicks"`
	CreatedAt time.Time `bson:"createdAt"`
}

// NewLinksRepository ensures the unique slug index exists; Insert relies on
// it for the create-if-absent guarantee.
func NewLinksRepository(ctx context.Context, m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{coll: m.Collection(linksCollection)}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_slug"),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("owner_createdAt_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create links indexes: %w", err)
	}

	return repo, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	doc := linkDoc{
		ID:        link.ID,
		Slug:      link.Slug,
		URL:       link.URL,
		OwnerID:   link.OwnerID,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt.UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return links.ErrSlugTaken
	}
	return fmt.Errorf("insert link: %w", err)
}

func (r *LinksRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slug: %w", err)
	}
	return n > 0, nil
}

func (r *LinksRepository) FindBySlug(ctx context.Context, slug string) (*links.Link, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *LinksRepository) FindByID(ctx context.Context, id string) (*links.Link, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *LinksRepository) findOne(ctx context.Context, filter bson.M) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err == nil {
		return mapLinkDoc(doc), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}
	return nil, fmt.Errorf("find link: %w", err)
}

func (r *LinksRepository) IncrementClicks(ctx context.Context, id string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"clicks": 1}})
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	if res.MatchedCount == 0 {
		return links.ErrNotFound
	}
	return nil
}

func (r *LinksRepository) ListByOwner(ctx context.Context, ownerID string) ([]*links.Link, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"ownerId": ownerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer cur.Close(ctx)

	var docs []linkDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}

	out := make([]*links.Link, 0, len(docs))
	for _, doc := range docs {
		out = append(out, mapLinkDoc(doc))
	}
	return out, nil
}

func (r *LinksRepository) StatsByOwner(ctx context.Context, ownerID string) (links.OwnerStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ownerId": ownerID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalUrls", Value: bson.M{"$sum": 1}},
			{Key: "totalClicks", Value: bson.M{"$sum": "$clicks"}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return links.OwnerStats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalURLs   int64 `bson:"totalUrls"`
		TotalClicks int64 `bson:"totalClicks"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return links.OwnerStats{}, fmt.Errorf("decode stats: %w", err)
	}
	if len(rows) == 0 {
		return links.OwnerStats{}, nil
	}
	return links.OwnerStats{TotalURLs: rows[0].TotalURLs, TotalClicks: rows[0].TotalClicks}, nil
}

func (r *LinksRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete link: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func mapLinkDoc(doc linkDoc) *links.Link {
	return &links.Link{
		ID:        doc.ID,
		Slug:      doc.Slug,
		URL:       doc.URL,
		OwnerID:   doc.OwnerID,
		Clicks:    doc.Clicks,
		CreatedAt: doc.CreatedAt,
	}
}
