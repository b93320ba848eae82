package main

import (
	"context"
	"fmt"
	"math/rand"

	"trivai/internal/bot"
	"trivai/internal/config"
	kafkadb "trivai/internal/database/kafka"
	mongodb "trivai/internal/database/mongo"
	mysqldb "trivai/internal/database/mysql"
	redisdb "trivai/internal/database/redis"
	"trivai/internal/events"
	"trivai/internal/models"
	"trivai/internal/session"
	"trivai/internal/store"
	"trivai/pkg/logger"
)

// healthChecks collects the dependency probes exposed on /healthz.
type healthChecks map[string]func(context.Context) error

func newFactStore(ctx context.Context, cfg *config.AppConfig, checks healthChecks) (store.FactStore, func(), error) {
	switch cfg.Databases.FactStore {
	case "mysql":
		db, err := mysqldb.GetDB(ctx, &cfg.Databases.MySQL)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQLFactStore(db)
		if err != nil {
			return nil, nil, err
		}
		checks["mysql"] = mysqldb.HealthCheck
		return s, func() { _ = mysqldb.Close() }, nil
	case "memory":
		return store.NewMemoryFactStore(rand.Intn), func() {}, nil
	default:
		client, err := mongodb.GetClient(ctx, &cfg.Databases.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		mongoCfg := cfg.Databases.MongoDB
		s, err := store.NewMongoFactStore(ctx, client.Database(mongoCfg.Database), mongoCfg.Collection)
		if err != nil {
			_ = mongodb.Close(context.Background())
			return nil, nil, err
		}
		checks["mongodb"] = mongodb.HealthCheck
		return s, func() { _ = mongodb.Close(context.Background()) }, nil
	}
}

func newSessionStore(ctx context.Context, cfg *config.AppConfig, checks healthChecks) (session.Store, func(), error) {
	ttl := config.Duration(cfg.Session.TTL)
	if cfg.Session.Backend == "redis" {
		client, err := redisdb.GetClient(ctx, &cfg.Databases.Redis)
		if err != nil {
			return nil, nil, err
		}
		checks["redis"] = redisdb.HealthCheck
		return session.NewRedisStore(client, ttl), func() { _ = redisdb.Close() }, nil
	}
	s, err := session.NewMemoryStore(cfg.Session.Capacity, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("session store: %w", err)
	}
	return s, func() {}, nil
}

// newEventPublisher returns a nil publisher when no Kafka brokers are configured.
func newEventPublisher(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, checks healthChecks) (bot.EventPublisher, func(), error) {
	if len(cfg.Databases.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}
	client, err := kafkadb.GetClient(ctx, &cfg.Databases.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if addr, err := client.ControllerAddress(ctx); err == nil {
		log.WithPayload(map[string]interface{}{"controller": addr, "topic": cfg.Databases.Kafka.Topic}).Info("Kafka events enabled")
	}
	checks["kafka"] = client.HealthCheck
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(models.NewErrorInfo(err, "kafka")).Error("Error closing Kafka client")
		}
	}
	return events.NewPublisher(client.Writer, log), closeFn, nil
}
