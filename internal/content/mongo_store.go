package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollectionBlogs  = "blogs"
	CollectionOffers = "offers"
)

// MongoStore keeps one document type in a MongoDB collection.
type MongoStore[T any, P Document[T]] struct {
	collection *mongo.Collection
	timeout    time.Duration
	now        func() time.Time
}

// NewMongoStore wraps the named collection of db.
func NewMongoStore[T any, P Document[T]](db *mongo.Database, collection string, timeout time.Duration) *MongoStore[T, P] {
	if db == nil {
		panic("content: mongo database required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &MongoStore[T, P]{
		collection: db.Collection(collection),
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MongoStore[T, P]) Create(ctx context.Context, doc *T) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m := P(doc).meta()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := s.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("content: mongo insert failed: %w", err)
	}
	return nil
}

func (s *MongoStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc T
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("content: mongo find failed: %w", err)
	}
	return &doc, nil
}

// Update replaces the document. The caller carries CreatedAt over from the
// stored copy.
func (s *MongoStore[T, P]) Update(ctx context.Context, doc *T) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m := P(doc).meta()
	m.UpdatedAt = s.now()
	res, err := s.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: m.ID}}, doc)
	if err != nil {
		return fmt.Errorf("content: mongo replace failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore[T, P]) List(ctx context.Context, q Query) ([]*T, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := mongoFilter[T, P](q)
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("content: mongo count failed: %w", err)
	}

	findOpts := options.Find().SetSort(mongoSort(q)).SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		findOpts.SetLimit(int64(q.Limit))
	}
	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("content: mongo find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("content: mongo decode failed: %w", err)
	}
	return docs, int(total), nil
}

func (s *MongoStore[T, P]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("content: mongo delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mongoFilter[T any, P Document[T]](q Query) bson.D {
	var zero T
	p := P(&zero)
	filter := p.scope(q)
	if q.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		clauses := bson.A{}
		for _, field := range p.searchFields() {
			clauses = append(clauses, bson.D{{Key: field, Value: pattern}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: clauses})
	}
	return filter
}

// mongoSort expects q.SortBy to be one of the whitelisted sort columns.
func mongoSort(q Query) bson.D {
	key := q.SortBy
	if key == "" {
		key = "created_at"
	}
	dir := -1
	if q.Ascending {
		dir = 1
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: dir}}
}
