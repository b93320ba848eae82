// Package api exposes health and fact endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"trivai/internal/models"
	"trivai/internal/store"
	"trivai/pkg/logger"

	"github.com/gin-gonic/gin"
)

// FactReader is the read side of the fact store.
type FactReader interface {
	SampleRandom(ctx context.Context) (*models.TriviaFact, error)
	Count(ctx context.Context) (int64, error)
}

// TriviaSource runs the trivia pipeline.
type TriviaSource interface {
	Random(ctx context.Context, log *logger.Logger) (*models.TriviaFact, error)
	Forced(ctx context.Context, topic string) (*models.TriviaFact, error)
}

// API provides handlers for the admin endpoints.
type API struct {
	facts  FactReader
	trivia TriviaSource
	logger *logger.Logger
	checks map[string]func(context.Context) error
}

// NewAPI creates a new API handler.
func NewAPI(facts FactReader, trivia TriviaSource, logger *logger.Logger) *API {
	return &API{facts: facts, trivia: trivia, logger: logger, checks: map[string]func(context.Context) error{}}
}

// AddCheck registers an extra dependency probed by the health endpoint.
func (a *API) AddCheck(name string, check func(context.Context) error) {
	a.checks[name] = check
}

// HealthHandler reports whether the fact store and the registered dependencies answer.
func (a *API) HealthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := a.facts.Count(ctx); err != nil {
		a.logger.WithError(models.NewErrorInfo(err, "fact_store")).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": "fact_store"})
		return
	}
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			a.logger.WithError(models.NewErrorInfo(err, name)).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": name})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RandomFactHandler returns one sampled stored fact.
func (a *API) RandomFactHandler(c *gin.Context) {
	fact, err := a.facts.SampleRandom(c.Request.Context())
	if errors.Is(err, store.ErrEmpty) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No stored facts"})
		return
	}
	if err != nil {
		a.logger.WithError(models.NewErrorInfo(err, "fact_store")).Error("Failed to sample fact")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sample fact"})
		return
	}
	c.JSON(http.StatusOK, fact)
}

// CountHandler returns the number of stored facts.
func (a *API) CountHandler(c *gin.Context) {
	n, err := a.facts.Count(c.Request.Context())
	if err != nil {
		a.logger.WithError(models.NewErrorInfo(err, "fact_store")).Error("Failed to count facts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count facts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// TriviaHandler runs the forced pipeline for ?topic=, or the random pipeline without one.
func (a *API) TriviaHandler(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))

	var (
		fact *models.TriviaFact
		err  error
	)
	if topic == "" {
		fact, err = a.trivia.Random(c.Request.Context(), a.logger)
	} else {
		fact, err = a.trivia.Forced(c.Request.Context(), topic)
	}
	if err != nil {
		a.logger.WithError(models.NewErrorInfo(err, "trivia")).WithPayload(map[string]interface{}{"topic": topic}).Warn("Trivia request failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "Could not produce trivia"})
		return
	}
	c.JSON(http.StatusOK, fact)
}
