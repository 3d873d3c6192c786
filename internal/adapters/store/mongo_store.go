package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/contact-relay/internal/core"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// mongoMessage maps to the messages collection
type mongoMessage struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Message   string        `bson:"message"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (m mongoMessage) toCore() core.StoredMessage {
	return core.StoredMessage{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// MongoStore is a MongoDB implementation of the MessageStore interface
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStore connects to MongoDB and ensures the created_at index exists
func NewMongoStore(ctx context.Context, uri, database, collection string, logger *zap.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: coll,
		logger:     logger,
	}, nil
}

// Create stores the submission. BSON dates have millisecond precision, so
// CreatedAt is truncated before insert to match what ListAll returns.
func (s *MongoStore) Create(ctx context.Context, sub core.Submission) (*core.StoredMessage, error) {
	doc := mongoMessage{
		ID:        bson.NewObjectID(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	msg := doc.toCore()
	return &msg, nil
}

// ListAll returns every message, newest first
func (s *MongoStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	var docs []mongoMessage
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]core.StoredMessage, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, d.toCore())
	}
	return messages, nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	return nil
}
