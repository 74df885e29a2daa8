package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

// requestDoc keeps the body as its JSON text so any JSON value round-trips unchanged.
type requestDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	URL          string             `bson:"url"`
	Method       string             `bson:"method"`
	Headers      map[string]string  `bson:"headers,omitempty"`
	Auth         *domain.AuthSpec   `bson:"authentication,omitempty"`
	Body         string             `bson:"body,omitempty"`
	CollectionID primitive.ObjectID `bson:"collection_id"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func requestToDoc(r *domain.APIRequest) (requestDoc, error) {
	collectionID, err := parseID(r.CollectionID)
	if err != nil {
		return requestDoc{}, err
	}
	doc := requestDoc{
		Name:         r.Name,
		URL:          r.URL,
		Method:       r.Method,
		Headers:      r.Headers,
		Auth:         r.Auth,
		Body:         string(r.Body),
		CollectionID: collectionID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ID != "" {
		if doc.ID, err = parseID(r.ID); err != nil {
			return requestDoc{}, err
		}
	}
	return doc, nil
}

func (d requestDoc) toDomain() *domain.APIRequest {
	r := &domain.APIRequest{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		URL:          d.URL,
		Method:       d.Method,
		Headers:      d.Headers,
		Auth:         d.Auth,
		CollectionID: d.CollectionID.Hex(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.Body != "" {
		r.Body = json.RawMessage(d.Body)
	}
	return r
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	doc, err := requestToDoc(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	created := *req
	created.ID = insertedHex(res.InsertedID)
	return &created, nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.APIRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RequestRepository) ListByCollection(ctx context.Context, collectionID string) ([]domain.APIRequest, error) {
	oid, err := parseID(collectionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{"collection_id": oid}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []requestDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}

	out := make([]domain.APIRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	doc, err := requestToDoc(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var stored requestDoc
	if err := r.col.FindOneAndReplace(ctx, bson.M{"_id": doc.ID}, doc, opts).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("update request: %w", err)
	}
	return stored.toDomain(), nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
