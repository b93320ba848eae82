package trivia

import (
	"context"
	"fmt"
	"strings"

	"trivai/internal/models"
	"trivai/pkg/logger"
)

// FallbackSampler is the read side of the fact store used by random requests.
type FallbackSampler interface {
	SampleRandom(ctx context.Context) (*models.TriviaFact, error)
}

// Pipeline runs the random and forced trivia flows.
type Pipeline struct {
	source    ArticleSource
	selector  *Selector
	extractor *Extractor
	fallback  FallbackSampler
	log       *logger.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(source ArticleSource, selector *Selector, extractor *Extractor, fallback FallbackSampler, log *logger.Logger) *Pipeline {
	return &Pipeline{source: source, selector: selector, extractor: extractor, fallback: fallback, log: log}
}

// Random returns a fact about a random article. Any failure of the live path degrades to a
// sampled stored fact; an error is returned only when the store has nothing to give either.
func (p *Pipeline) Random(ctx context.Context, log *logger.Logger) (*models.TriviaFact, error) {
	if log == nil {
		log = p.log
	}

	fact, err := p.live(ctx)
	if err == nil {
		return fact, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.WithError(models.NewErrorInfo(err, "live_extraction")).Warn("Live trivia failed, using fallback store")

	stored, serr := p.fallback.SampleRandom(ctx)
	if serr != nil {
		return nil, fmt.Errorf("fallback after %v: %w", err, serr)
	}
	fb := *stored
	fb.Origin = models.OriginFallback
	return &fb, nil
}

func (p *Pipeline) live(ctx context.Context) (*models.TriviaFact, error) {
	_, seg, err := p.selector.SelectRandom(ctx, p.source)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(ctx, seg)
}

// Forced returns a fact about the named topic. It never consults the fallback store.
func (p *Pipeline) Forced(ctx context.Context, topic string) (*models.TriviaFact, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("empty topic: %w", models.ErrNotFound)
	}
	article, err := p.source.Resolve(ctx, topic)
	if err != nil {
		return nil, err
	}
	seg, err := p.selector.Select(article, true)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(ctx, seg)
}

