package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

type CollectionRepository struct {
	col      *mongo.Collection
	requests *mongo.Collection
}

func NewCollectionRepository(db *mongo.Database) *CollectionRepository {
	return &CollectionRepository{
		col:      db.Collection(collectionCollections),
		requests: db.Collection(collectionRequests),
	}
}

type collectionDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	OwnerID      string             `bson:"owner_id"`
	RequestCount int64              `bson:"request_count,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d collectionDoc) toDomain() *domain.Collection {
	return &domain.Collection{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		OwnerID:      d.OwnerID,
		RequestCount: d.RequestCount,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// newestFirst is the list ordering shared by collections and requests.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *CollectionRepository) Create(ctx context.Context, c *domain.Collection) (*domain.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, collectionDoc{
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}

	created := *c
	created.ID = insertedHex(res.InsertedID)
	return &created, nil
}

func (r *CollectionRepository) FindByID(ctx context.Context, id string) (*domain.Collection, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc collectionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("find collection: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByOwner counts each collection's requests in the same aggregation.
func (r *CollectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$lookup", Value: bson.M{
			"from": collectionRequests,
			"let":  bson.M{"cid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$collection_id", "$$cid"}}}},
				bson.M{"$count": "n"},
			},
			"as": "counts",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"request_count": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$counts.n", 0}}, 0}},
		}}},
		{{Key: "$project", Value: bson.M{"counts": 0}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []collectionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}

	out := make([]domain.Collection, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

func (r *CollectionRepository) Rename(ctx context.Context, id, name string) (*domain.Collection, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc collectionDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("rename collection: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the collection first so a failure midway leaves unreachable
// requests rather than a collection with missing ones.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCollectionNotFound
	}

	if _, err := r.requests.DeleteMany(ctx, bson.M{"collection_id": oid}); err != nil {
		return fmt.Errorf("delete collection requests: %w", err)
	}
	return nil
}
