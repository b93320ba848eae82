package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	"trivai/internal/models"
	"trivai/pkg/logger"
)

// Handler reacts to inbound messages; *bot.Orchestrator implements it.
type Handler interface {
	HandleStart(ctx context.Context, chatID int64) error
	HandleMessage(ctx context.Context, chatID int64, text string) error
}

// UpdateSource is the long-polling half of the Bot API.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error)
}

// Poller long-polls for updates and dispatches them. Updates of one chat are handled
// one at a time and in order; different chats run concurrently.
type Poller struct {
	source  UpdateSource
	timeout int
	backoff time.Duration
	log     *logger.Logger

	mu     sync.Mutex
	queues map[int64][]*Message
	wg     sync.WaitGroup
}

// NewPoller creates a Poller. timeout is the getUpdates timeout in seconds.
func NewPoller(source UpdateSource, timeout int, backoff time.Duration, log *logger.Logger) *Poller {
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Poller{
		source:  source,
		timeout: timeout,
		backoff: backoff,
		log:     log,
		queues:  make(map[int64][]*Message),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight handlers.
func (p *Poller) Run(ctx context.Context, handler Handler) error {
	defer p.wg.Wait()

	p.log.Info("Telegram poller started")
	var offset int64
	for {
		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.WithError(models.NewErrorInfo(err, "telegram")).Warn("Failed to get updates")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
				continue
			}
			p.dispatch(ctx, handler, u.Message)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// dispatch queues msg behind any message of the same chat still being handled.
func (p *Poller) dispatch(ctx context.Context, handler Handler, msg *Message) {
	chatID := msg.Chat.ID

	p.mu.Lock()
	pending, busy := p.queues[chatID]
	p.queues[chatID] = append(pending, msg)
	p.mu.Unlock()
	if busy {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			p.mu.Lock()
			queue := p.queues[chatID]
			if len(queue) == 0 {
				delete(p.queues, chatID)
				p.mu.Unlock()
				return
			}
			next := queue[0]
			p.queues[chatID] = queue[1:]
			p.mu.Unlock()

			p.handle(ctx, handler, next)
		}
	}()
}

func (p *Poller) handle(ctx context.Context, handler Handler, msg *Message) {
	text := strings.TrimSpace(msg.Text)
	var err error
	switch {
	case isCommand(text, "start"):
		err = handler.HandleStart(ctx, msg.Chat.ID)
	case strings.HasPrefix(text, "/"):
		p.log.WithPayload(map[string]interface{}{"chat_id": msg.Chat.ID, "command": text}).Debug("Ignoring unknown command")
		return
	default:
		err = handler.HandleMessage(ctx, msg.Chat.ID, text)
	}
	if err != nil && ctx.Err() == nil {
		p.log.WithError(models.NewErrorInfo(err, "handler")).WithPayload(map[string]interface{}{"chat_id": msg.Chat.ID}).Error("Failed to handle message")
	}
}

// isCommand matches "/name" and "/name@botname", optionally followed by arguments.
func isCommand(text, name string) bool {
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd == "/"+name
}
