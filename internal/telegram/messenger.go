package telegram

import "context"

// Messenger sends bot replies through a Client.
type Messenger struct {
	client *Client
}

func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.client.SendMessage(ctx, chatID, text, nil)
}

func (m *Messenger) SendWithButtons(ctx context.Context, chatID int64, text string, buttons []string) error {
	return m.client.SendMessage(ctx, chatID, text, buttons)
}

func (m *Messenger) SendTyping(ctx context.Context, chatID int64) error {
	return m.client.SendChatAction(ctx, chatID, ChatActionTyping)
}
