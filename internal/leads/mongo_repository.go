package leads

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

// CollectionLeads is the document collection holding local lead records.
const CollectionLeads = "leads"

type leadDocument struct {
	ID         string            `bson:"_id"`
	Kind       string            `bson:"kind"`
	Name       string            `bson:"name,omitempty"`
	Email      string            `bson:"email,omitempty"`
	Phone      string            `bson:"phone,omitempty"`
	Model      string            `bson:"model,omitempty"`
	Date       string            `bson:"date,omitempty"`
	Time       string            `bson:"time,omitempty"`
	Notes      string            `bson:"notes,omitempty"`
	Location   string            `bson:"location,omitempty"`
	Campaign   string            `bson:"campaign,omitempty"`
	LeadSource string            `bson:"lead_source,omitempty"`
	Fields     map[string]string `bson:"fields,omitempty"`
	CreatedAt  time.Time         `bson:"created_at"`
}

func toDocument(l *Lead) leadDocument {
	return leadDocument{
		ID:         l.ID,
		Kind:       string(l.Kind),
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Model:      l.Model,
		Date:       l.Date,
		Time:       l.Time,
		Notes:      l.Notes,
		Location:   l.Location,
		Campaign:   l.Campaign,
		LeadSource: l.LeadSource,
		Fields:     l.Fields,
		CreatedAt:  l.CreatedAt,
	}
}

func (d leadDocument) lead() *Lead {
	return &Lead{
		ID:         d.ID,
		Kind:       Kind(d.Kind),
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		Model:      d.Model,
		Date:       d.Date,
		Time:       d.Time,
		Notes:      d.Notes,
		Location:   d.Location,
		Campaign:   d.Campaign,
		LeadSource: d.LeadSource,
		Fields:     d.Fields,
		CreatedAt:  d.CreatedAt,
	}
}

// MongoStore keeps leads in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoStore wraps the leads collection of db.
func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	if db == nil {
		panic("leads: mongo database required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &MongoStore{collection: db.Collection(CollectionLeads), timeout: timeout}
}

// Create inserts the lead document.
func (s *MongoStore) Create(ctx context.Context, lead *Lead) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if _, err := s.collection.InsertOne(ctx, toDocument(lead)); err != nil {
		return fmt.Errorf("leads: mongo insert failed: %w", err)
	}
	return nil
}

// Get fetches a lead by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc leadDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: mongo find failed: %w", err)
	}
	return doc.lead(), nil
}

// List returns one page of leads plus the total matching count.
func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]*Lead, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := mongoFilter(filter)
	total, err := s.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("leads: mongo count failed: %w", err)
	}

	findOpts := options.Find().SetSort(mongoSort(filter)).SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		findOpts.SetLimit(int64(filter.Limit))
	}
	cursor, err := s.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("leads: mongo find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("leads: mongo decode failed: %w", err)
	}
	out := make([]*Lead, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.lead())
	}
	return out, int(total), nil
}

// Delete removes a lead by ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("leads: mongo delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func mongoFilter(filter ListFilter) bson.D {
	query := bson.D{}
	if filter.Kind != "" {
		query = append(query, bson.E{Key: "kind", Value: string(filter.Kind)})
	}
	if filter.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
			bson.D{{Key: "phone", Value: pattern}},
			bson.D{{Key: "model", Value: pattern}},
		}})
	}
	return query
}

func mongoSort(filter ListFilter) bson.D {
	key := "created_at"
	switch filter.SortBy {
	case "name", "model":
		key = filter.SortBy
	}
	dir := -1
	if filter.Ascending {
		dir = 1
	}
	return bson.D{{Key: key, Value: dir}}
}
