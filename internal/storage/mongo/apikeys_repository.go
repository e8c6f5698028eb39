package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/db"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const apiKeysCollection = "api_keys"

type APIKeysRepository struct {
	coll *mongo.Collection
}

type apiKeyDoc struct {
	ID         string     `bson:"_id"`
	KeyHash    string     `bson:"keyHash"`
	Prefix     string     `bson:"prefix"`
	OwnerID    string     `bson:"ownerId"`
	Name       string     `bson:"name"`
	CreatedAt  time.Time  `bson:"createdAt"`
	LastUsedAt *time.Time `bson:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `bson:"expiresAt,omitempty"`
	Revoked    bool       `bson:"revoked"`
}

func NewAPIKeysRepository(ctx context.Context, m *db.Mongo) (*APIKeysRepository, error) {
	repo := &APIKeysRepository{coll: m.Collection(apiKeysCollection)}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "keyHash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_keyHash"),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("owner_createdAt_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create api_keys indexes: %w", err)
	}

	return repo, nil
}

func (r *APIKeysRepository) Create(ctx context.Context, key *apikeys.APIKey) error {
	doc := apiKeyDoc{
		ID:         key.ID,
		KeyHash:    key.KeyHash,
		Prefix:     key.Prefix,
		OwnerID:    key.OwnerID,
		Name:       key.Name,
		CreatedAt:  key.CreatedAt.UTC(),
		LastUsedAt: key.LastUsedAt,
		ExpiresAt:  key.ExpiresAt,
		Revoked:    key.Revoked,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *APIKeysRepository) FindByHash(ctx context.Context, keyHash string) (*apikeys.APIKey, error) {
	var doc apiKeyDoc
	err := r.coll.FindOne(ctx, bson.M{"keyHash": keyHash}).Decode(&doc)
	if err == nil {
		return mapAPIKeyDoc(doc), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apikeys.ErrNotFound
	}
	return nil, fmt.Errorf("find api key: %w", err)
}

func (r *APIKeysRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*apikeys.APIKey, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"ownerId": ownerID, "revoked": false},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer cur.Close(ctx)

	var docs []apiKeyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}

	out := make([]*apikeys.APIKey, 0, len(docs))
	for _, doc := range docs {
		out = append(out, mapAPIKeyDoc(doc))
	}
	return out, nil
}

func (r *APIKeysRepository) Revoke(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "ownerId": ownerID},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return false, fmt.Errorf("revoke api key: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *APIKeysRepository) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"lastUsedAt": at.UTC()}})
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	if res.MatchedCount == 0 {
		return apikeys.ErrNotFound
	}
	return nil
}

func mapAPIKeyDoc(doc apiKeyDoc) *apikeys.APIKey {
	return &apikeys.APIKey{
		ID:         doc.ID,
		KeyHash:    doc.KeyHash,
		Prefix:     doc.Prefix,
		OwnerID:    doc.OwnerID,
		Name:       doc.Name,
		CreatedAt:  doc.CreatedAt,
		LastUsedAt: doc.LastUsedAt,
		ExpiresAt:  doc.ExpiresAt,
		Revoked:    doc.Revoked,
	}
}
