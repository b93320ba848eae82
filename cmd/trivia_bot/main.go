package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivai/internal/api"
	"trivai/internal/bot"
	"trivai/internal/config"
	"trivai/internal/llm"
	"trivai/internal/models"
	"trivai/internal/telegram"
	"trivai/internal/trivia"
	"trivai/internal/wiki"
	httpclient "trivai/pkg/http"
	"trivai/pkg/logger"
	"trivai/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	path := os.Getenv("TRIVAI_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New(cfg.App.Name, "", "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fact store, sessions and events.
	checks := healthChecks{}
	facts, closeFacts, err := newFactStore(ctx, cfg, checks)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "fact_store")).Fatal("Failed to initialise fact store")
	}
	defer closeFacts()

	sessions, closeSessions, err := newSessionStore(ctx, cfg, checks)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "session_store")).Fatal("Failed to initialise session store")
	}
	defer closeSessions()

	publisher, closeEvents, err := newEventPublisher(ctx, cfg, serviceLogger, checks)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "kafka")).Fatal("Failed to initialise Kafka publisher")
	}
	defer closeEvents()

	// Trivia pipeline.
	wikiHTTP, err := httpclient.NewClient(cfg.HTTPClient, httpclient.WithUserAgent(cfg.Wikipedia.UserAgent))
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "config")).Fatal("Failed to create Wikipedia HTTP client")
	}
	articles := wiki.New(cfg.Wikipedia.BaseURL, wikiHTTP)

	model, err := llm.NewLLM(ctx, cfg.LLM)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "llm")).Fatal("Failed to create LLM client")
	}

	rnd := trivia.NewRand(0)
	selector := trivia.NewSelector(trivia.SelectorConfigFrom(cfg.Trivia), rnd)
	extractor := trivia.NewExtractor(model, ratelimiter.New(cfg.LLM.RateLimit, cfg.LLM.Burst), cfg.Trivia.SimilarityThreshold)
	pipeline := trivia.NewPipeline(articles, selector, extractor, facts, serviceLogger)

	// Telegram transport and conversation.
	tgHTTP, err := httpclient.NewClient(cfg.HTTPClient)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "config")).Fatal("Failed to create Telegram HTTP client")
	}
	tg := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.Token, tgHTTP)
	orchestrator := bot.New(telegram.NewMessenger(tg), pipeline, articles, facts, sessions, publisher, rnd,
		bot.OptionsFrom(cfg.Trivia), serviceLogger)
	poller := telegram.NewPoller(tg, cfg.Telegram.PollTimeout, config.Duration(cfg.Telegram.PollBackoff), serviceLogger)

	// Admin API.
	var srv *http.Server
	if cfg.Server.Enabled {
		gin.SetMode(gin.ReleaseMode)
		apiHandler := api.NewAPI(facts, pipeline, serviceLogger)
		for name, check := range checks {
			apiHandler.AddCheck(name, check)
		}
		router := api.NewRouter(apiHandler, cfg.Server.RateLimiter)
		srv = &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			serviceLogger.Info("Starting HTTP server on " + srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serviceLogger.WithError(models.NewErrorInfo(err, "http")).Error("HTTP server failed")
				stop()
			}
		}()
	}

	serviceLogger.WithPayload(map[string]interface{}{
		"llm_provider": cfg.LLM.Provider,
		"fact_store":   cfg.Databases.FactStore,
		"sessions":     cfg.Session.Backend,
	}).Info("TrivAI bot started")

	if err := poller.Run(ctx, orchestrator); err != nil && !errors.Is(err, context.Canceled) {
		serviceLogger.WithError(models.NewErrorInfo(err, "telegram")).Error("Poller stopped")
	}
	serviceLogger.Info("Shutting down...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serviceLogger.WithError(models.NewErrorInfo(err, "http")).Error("Server forced to shutdown")
		}
	}
	serviceLogger.Info("Bot gracefully stopped")
}
