package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivai/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFactStore is a FactStore backed by a MongoDB collection.
// Documents keep the article_name / result / wiki_url layout of the existing trivia collection.
type MongoFactStore struct {
	collection *mongo.Collection
}

// NewMongoFactStore creates the store and ensures the unique index on article_name.
func NewMongoFactStore(ctx context.Context, db *mongo.Database, collectionName string) (*MongoFactStore, error) {
	s := &MongoFactStore{collection: db.Collection(collectionName)}
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "article_name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("article_name_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("create article_name index: %w: %w", err, models.ErrStoreUnavailable)
	}
	return s, nil
}

// SampleRandom returns one uniformly sampled fact.
func (s *MongoFactStore) SampleRandom(ctx context.Context) (*models.TriviaFact, error) {
	cursor, err := s.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sample fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("sample fact: %w: %w", err, models.ErrStoreUnavailable)
		}
		return nil, ErrEmpty
	}
	var fact models.TriviaFact
	if err := cursor.Decode(&fact); err != nil {
		return nil, fmt.Errorf("decode fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	return stored(fact), nil
}

// FindByTitle retrieves the fact stored for an article title.
func (s *MongoFactStore) FindByTitle(ctx context.Context, title string) (*models.TriviaFact, error) {
	var fact models.TriviaFact
	err := s.collection.FindOne(ctx, bson.M{"article_name": title}).Decode(&fact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%q: %w", title, models.ErrNotFound)
		}
		return nil, fmt.Errorf("find fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	return stored(fact), nil
}

// InsertIfAbsent upserts with $setOnInsert so an existing record is never overwritten.
func (s *MongoFactStore) InsertIfAbsent(ctx context.Context, fact *models.TriviaFact) (InsertResult, error) {
	createdAt := fact.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	filter := bson.M{"article_name": fact.ArticleTitle}
	update := bson.M{
		"$setOnInsert": bson.M{
			"article_name": fact.ArticleTitle,
			"result":       fact.Text,
			"wiki_url":     fact.SourceURL,
			"created_at":   createdAt,
		},
	}

	res, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts can both miss the filter; the unique index rejects the loser.
		if mongo.IsDuplicateKeyError(err) {
			return AlreadyPresent, nil
		}
		return AlreadyPresent, fmt.Errorf("insert fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	if res.UpsertedCount == 1 {
		return Inserted, nil
	}
	return AlreadyPresent, nil
}

// Count returns the number of stored facts.
func (s *MongoFactStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count facts: %w: %w", err, models.ErrStoreUnavailable)
	}
	return n, nil
}
