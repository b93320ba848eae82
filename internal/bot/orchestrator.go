// Package bot sequences the trivia pipeline, the session state and the replies for each user turn.
package bot

import (
	"context"
	"fmt"

	"trivai/internal/config"
	"trivai/internal/models"
	"trivai/internal/session"
	"trivai/internal/store"
	"trivai/internal/trivia"
	"trivai/pkg/logger"

	"github.com/google/uuid"
)

// Messenger delivers replies to a chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, buttons []string) error
	SendTyping(ctx context.Context, chatID int64) error
}

// TriviaSource produces facts; *trivia.Pipeline implements it.
type TriviaSource interface {
	Random(ctx context.Context, log *logger.Logger) (*models.TriviaFact, error)
	Forced(ctx context.Context, topic string) (*models.TriviaFact, error)
}

// FactSaver persists liked facts.
type FactSaver interface {
	InsertIfAbsent(ctx context.Context, fact *models.TriviaFact) (store.InsertResult, error)
}

// EventPublisher announces liked facts.
type EventPublisher interface {
	FactLiked(ctx context.Context, chatID int64, fact *models.TriviaFact, inserted bool) error
}

// Options tunes the conversation.
type Options struct {
	AdviceChance     float64
	MaxMessageLength int
	DetailSource     string // "full" or "summary"
}

// OptionsFrom maps the trivia configuration block onto Options.
func OptionsFrom(cfg config.TriviaConfig) Options {
	return Options{
		AdviceChance:     config.Float64(cfg.AdviceChance),
		MaxMessageLength: cfg.MaxMessageLength,
		DetailSource:     cfg.DetailSource,
	}
}

// Orchestrator handles /start and text messages for every chat.
// Calls for the same chat must not overlap; the transport serializes them.
type Orchestrator struct {
	messenger Messenger
	trivia    TriviaSource
	articles  trivia.ArticleSource
	facts     FactSaver
	sessions  session.Store
	events    EventPublisher
	rand      trivia.Rand
	opts      Options
	log       *logger.Logger
}

// New creates an Orchestrator. events may be nil.
func New(messenger Messenger, source TriviaSource, articles trivia.ArticleSource, facts FactSaver,
	sessions session.Store, events EventPublisher, r trivia.Rand, opts Options, log *logger.Logger) *Orchestrator {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = 4000
	}
	if opts.DetailSource == "" {
		opts.DetailSource = "full"
	}
	return &Orchestrator{
		messenger: messenger,
		trivia:    source,
		articles:  articles,
		facts:     facts,
		sessions:  sessions,
		events:    events,
		rand:      r,
		opts:      opts,
		log:       log,
	}
}

// turn carries the state of one inbound update.
type turn struct {
	chatID int64
	sess   *models.Session
	log    *logger.Logger
}

func (o *Orchestrator) begin(ctx context.Context, chatID int64) (*turn, error) {
	sess, err := o.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &turn{
		chatID: chatID,
		sess:   sess,
		log:    o.log.WithTrace(uuid.New().String(), chatID),
	}, nil
}

// HandleStart greets the user and delivers a first random fact.
func (o *Orchestrator) HandleStart(ctx context.Context, chatID int64) error {
	t, err := o.begin(ctx, chatID)
	if err != nil {
		return err
	}
	t.log.Info("Start command received")

	if err := o.messenger.SendText(ctx, chatID, msgGreeting); err != nil {
		return err
	}
	if err := o.messenger.SendText(ctx, chatID, msgIntro); err != nil {
		return err
	}
	return o.randomFact(ctx, t, false)
}

// HandleMessage routes a text message to the matching flow.
func (o *Orchestrator) HandleMessage(ctx context.Context, chatID int64, text string) error {
	t, err := o.begin(ctx, chatID)
	if err != nil {
		return err
	}
	t.log.WithPayload(map[string]interface{}{"text": text, "state": string(t.sess.State())}).Debug("Message received")

	switch text {
	case ButtonMoreTrivia:
		return o.randomFact(ctx, t, true)
	case ButtonMoreDetail:
		return o.moreDetail(ctx, t)
	case ButtonLike:
		return o.like(ctx, t)
	default:
		return o.forcedFact(ctx, t, text)
	}
}

func (o *Orchestrator) randomFact(ctx context.Context, t *turn, withAdvice bool) error {
	if err := o.messenger.SendTyping(ctx, t.chatID); err != nil {
		t.log.WithError(models.NewErrorInfo(err, "transport")).Warn("Failed to send typing indicator")
	}

	fact, err := o.trivia.Random(ctx, t.log)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.WithError(models.NewErrorInfo(err, "random_trivia")).Error("No trivia available, even from the fallback store")
		return o.messenger.SendWithButtons(ctx, t.chatID, msgNoTrivia, Buttons)
	}
	return o.deliver(ctx, t, fact, withAdvice)
}

func (o *Orchestrator) forcedFact(ctx context.Context, t *turn, topic string) error {
	if err := o.messenger.SendTyping(ctx, t.chatID); err != nil {
		t.log.WithError(models.NewErrorInfo(err, "transport")).Warn("Failed to send typing indicator")
	}

	fact, err := o.trivia.Forced(ctx, topic)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.WithError(models.NewErrorInfo(err, "forced_trivia")).WithPayload(map[string]interface{}{"topic": topic}).Warn("Forced trivia failed")
		if err := o.messenger.SendWithButtons(ctx, t.chatID, msgForcedFail, Buttons); err != nil {
			return err
		}
		return o.messenger.SendWithButtons(ctx, t.chatID, msgButtonsHint, Buttons)
	}
	return o.deliver(ctx, t, fact, true)
}

// deliver records fact as the session's current fact and sends it, optionally followed by advice.
func (o *Orchestrator) deliver(ctx context.Context, t *turn, fact *models.TriviaFact, withAdvice bool) error {
	t.sess.Deliver(fact)
	if err := o.sessions.Save(ctx, t.sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	t.log.WithPayload(map[string]interface{}{
		"article_name": fact.ArticleTitle,
		"origin":       string(fact.Origin),
		"score":        fact.Score,
	}).Info("Trivia delivered")

	if err := o.messenger.SendWithButtons(ctx, t.chatID, fact.Render(), Buttons); err != nil {
		return err
	}
	if withAdvice && o.rand.Float64() < o.opts.AdviceChance {
		return o.messenger.SendWithButtons(ctx, t.chatID, advice[o.rand.Intn(len(advice))], Buttons)
	}
	return nil
}

func (o *Orchestrator) moreDetail(ctx context.Context, t *turn) error {
	fact := t.sess.Fact
	if fact == nil {
		return o.messenger.SendWithButtons(ctx, t.chatID, msgIdleHint, Buttons)
	}

	if t.sess.State() != models.StateFactDelivered {
		if err := o.messenger.SendWithButtons(ctx, t.chatID, fact.SourceURL, Buttons); err != nil {
			return err
		}
		t.sess.AdvanceDetail()
		return o.sessions.Save(ctx, t.sess)
	}

	article, err := o.articles.Resolve(ctx, fact.ArticleTitle)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.WithError(models.NewErrorInfo(err, "article_detail")).Warn("Failed to reload article for detail")
		return o.messenger.SendWithButtons(ctx, t.chatID, msgDetailFailed(fact.ArticleTitle), Buttons)
	}

	text := article.Text
	if o.opts.DetailSource == "summary" || text == "" {
		text = article.Summary
	}
	if text == "" {
		text = fact.SourceURL
	}
	for _, part := range chunk(text, o.opts.MaxMessageLength) {
		if err := o.messenger.SendText(ctx, t.chatID, part); err != nil {
			return err
		}
	}
	t.sess.AdvanceDetail()
	return o.sessions.Save(ctx, t.sess)
}

func (o *Orchestrator) like(ctx context.Context, t *turn) error {
	fact := t.sess.Fact
	if fact == nil {
		return o.messenger.SendWithButtons(ctx, t.chatID, msgIdleHint, Buttons)
	}

	res, err := o.facts.InsertIfAbsent(ctx, fact)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.WithError(models.NewErrorInfo(err, "fact_store")).Error("Failed to save liked fact")
		return o.messenger.SendWithButtons(ctx, t.chatID, msgSaveFailed, Buttons)
	}
	t.log.WithPayload(map[string]interface{}{"article_name": fact.ArticleTitle, "result": res.String()}).Info("Fact liked")

	if o.events != nil {
		if err := o.events.FactLiked(ctx, t.chatID, fact, res == store.Inserted); err != nil {
			t.log.WithError(models.NewErrorInfo(err, "events")).Warn("Failed to publish fact_liked event")
		}
	}
	return o.messenger.SendWithButtons(ctx, t.chatID, msgLiked(fact.ArticleTitle), Buttons)
}

// chunk splits text into pieces of at most n runes.
func chunk(text string, n int) []string {
	runes := []rune(text)
	var parts []string
	for len(runes) > n {
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
