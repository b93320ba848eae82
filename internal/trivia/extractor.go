package trivia

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trivai/internal/llm"
	"trivai/internal/models"
	"trivai/pkg/ratelimiter"
)

const promptPrefix = "Find an interesting piece of trivia in this text. Do not use the word trivia. Use only information in this text: "

// Extraction failure reasons.
const (
	ReasonCompletion  = "completion"
	ReasonUngrounded  = "ungrounded"
	ReasonRateLimited = "rate_limited"
)

// ExtractionError describes why a segment produced no fact. It matches models.ErrExtractionFailed.
type ExtractionError struct {
	Reason string
	Score  int
	Err    error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("trivia extraction failed (%s): %v", e.Reason, e.Err)
	case e.Reason == ReasonUngrounded:
		return fmt.Sprintf("trivia extraction failed (%s, score %d)", e.Reason, e.Score)
	default:
		return fmt.Sprintf("trivia extraction failed (%s)", e.Reason)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, models.ErrExtractionFailed) hold for every ExtractionError.
func (e *ExtractionError) Is(target error) bool { return target == models.ErrExtractionFailed }

// BuildPrompt returns the extraction prompt for a segment.
func BuildPrompt(segmentText string) string {
	return promptPrefix + segmentText
}

// Extractor asks a language model for one fact and checks it against the segment.
type Extractor struct {
	model     llm.LLM
	limiter   ratelimiter.RateLimiter
	threshold int
	now       func() time.Time
}

// NewExtractor creates an Extractor. A nil limiter means unlimited; threshold <= 0 means 70.
func NewExtractor(model llm.LLM, limiter ratelimiter.RateLimiter, threshold int) *Extractor {
	if limiter == nil {
		limiter = ratelimiter.Unlimited{}
	}
	if threshold <= 0 {
		threshold = 70
	}
	return &Extractor{model: model, limiter: limiter, threshold: threshold, now: time.Now}
}

// Extract returns a live fact grounded in seg, or an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, seg models.Segment) (*models.TriviaFact, error) {
	if !e.limiter.Allow() {
		return nil, &ExtractionError{Reason: ReasonRateLimited}
	}

	resp, err := e.model.GenerateContent(ctx, models.NewTextRequest(BuildPrompt(seg.Text)))
	if err != nil {
		return nil, &ExtractionError{Reason: ReasonCompletion, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &ExtractionError{Reason: ReasonUngrounded}
	}
	score := PartialRatio(seg.Text, text)
	if score < e.threshold {
		return nil, &ExtractionError{Reason: ReasonUngrounded, Score: score}
	}

	return &models.TriviaFact{
		ArticleTitle: seg.ArticleTitle,
		Text:         text,
		SourceURL:    seg.SourceURL,
		Origin:       models.OriginLive,
		Score:        score,
		CreatedAt:    e.now().UTC(),
	}, nil
}
