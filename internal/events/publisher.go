// Package events publishes conversation events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"trivai/internal/models"
	"trivai/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EventFactLiked is the type of the event written when a user likes a fact.
const EventFactLiked = "fact_liked"

// FactEvent is the JSON payload of a fact event.
type FactEvent struct {
	Event        string    `json:"event"`
	ChatID       int64     `json:"chat_id"`
	ArticleTitle string    `json:"article_name"`
	Text         string    `json:"result"`
	SourceURL    string    `json:"wiki_url"`
	Inserted     bool      `json:"inserted"`
	Timestamp    time.Time `json:"timestamp"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher is responsible for publishing fact events to Kafka.
type Publisher struct {
	writer MessageWriter
	logger *logger.Logger
	now    func() time.Time
}

// NewPublisher creates a new Publisher over a writer bound to the events topic.
func NewPublisher(writer MessageWriter, logger *logger.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger, now: time.Now}
}

// FactLiked publishes a fact_liked event keyed by article title.
func (p *Publisher) FactLiked(ctx context.Context, chatID int64, fact *models.TriviaFact, inserted bool) error {
	msgBytes, err := json.Marshal(FactEvent{
		Event:        EventFactLiked,
		ChatID:       chatID,
		ArticleTitle: fact.ArticleTitle,
		Text:         fact.Text,
		SourceURL:    fact.SourceURL,
		Inserted:     inserted,
		Timestamp:    p.now().UTC(),
	})
	if err != nil {
		p.logger.WithError(models.NewErrorInfo(err, "marshal")).Error("Failed to marshal fact event for Kafka")
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fact.ArticleTitle),
		Value: msgBytes,
	})
	if err != nil {
		p.logger.WithError(models.NewErrorInfo(err, "kafka")).WithPayload(map[string]interface{}{"article_name": fact.ArticleTitle}).Error("Failed to write fact event to Kafka")
		return err
	}
	return nil
}
