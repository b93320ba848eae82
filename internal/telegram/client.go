// Package telegram is a thin long-polling client of the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	httpclient "trivai/pkg/http"
)

// ChatActionTyping shows the "typing..." indicator.
const ChatActionTyping = "typing"

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// APIError is a Bot API reply with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

// Client calls Bot API methods with JSON bodies.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// NewClient creates a Client for the bot identified by token.
func NewClient(baseURL, token string, hc *httpclient.Client) *Client {
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/") + "/bot" + token}
}

// GetUpdates long-polls for updates with an id of at least offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]interface{}{
		"offset":          offset,
		"timeout":         timeout,
		"allowed_updates": []string{"message"},
	}, &updates)
	return updates, err
}

// SendMessage sends text; a non-empty keyboard is attached as a reply keyboard, one button per row.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard []string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if len(keyboard) > 0 {
		markup := ReplyKeyboardMarkup{ResizeKeyboard: true}
		for _, b := range keyboard {
			markup.Keyboard = append(markup.Keyboard, []KeyboardButton{{Text: b}})
		}
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// SendChatAction shows a chat action such as ChatActionTyping.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return c.call(ctx, "sendChatAction", map[string]interface{}{
		"chat_id": chatID,
		"action":  action,
	}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload, result interface{}) error {
	var resp apiResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/"+method, payload, &resp)
	if err != nil {
		// Bot API errors come back as 4xx with a JSON description.
		var se *httpclient.StatusError
		if errors.As(err, &se) && json.Unmarshal([]byte(se.Body), &resp) == nil && resp.Description != "" {
			return &APIError{Method: method, Code: se.StatusCode, Description: resp.Description}
		}
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if !resp.OK {
		return &APIError{Method: method, Code: resp.ErrorCode, Description: resp.Description}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
