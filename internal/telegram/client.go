// Package telegram is the chat transport: a thin Bot API client, the
// long-poll update loop, and the mapping of messages and buttons onto the
// scheduling engine. It holds no scheduling state of its own.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	botToken string
	client   *http.Client
}

// NewClient creates a client for the given bot token. The HTTP timeout
// leaves headroom over the long-poll timeout passed to GetUpdates.
func NewClient(botToken string, pollTimeout int) *Client {
	return &Client{
		botToken: botToken,
		client:   &http.Client{Timeout: time.Duration(pollTimeout+30) * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Update is one item from getUpdates.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an incoming or sent chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text,omitempty"`
	Chat      Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboardMarkup attaches buttons to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// KeyboardButton is one button of a reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardMarkup replaces the user's keyboard with custom buttons.
type ReplyKeyboardMarkup struct {
	Keyboard              [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard        bool               `json:"resize_keyboard,omitempty"`
	InputFieldPlaceholder string             `json:"input_field_placeholder,omitempty"`
}

// call makes a request to the Telegram Bot API and unwraps the envelope.
func (c *Client) call(method string, payload map[string]interface{}) (json.RawMessage, error) {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/%s", c.botToken, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := c.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram API error: %s", apiResp.Description)
	}
	return apiResp.Result, nil
}

// SendMessage sends plain text to a chat.
func (c *Client) SendMessage(chatID int64, text string) error {
	_, err := c.call("sendMessage", map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

// SendMessageWithMarkup sends text with a reply or inline keyboard attached.
func (c *Client) SendMessageWithMarkup(chatID int64, text string, markup interface{}) error {
	_, err := c.call("sendMessage", map[string]interface{}{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": markup,
	})
	return err
}

// EditMessageText replaces the text (and keyboard) of a sent message.
func (c *Client) EditMessageText(chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call("editMessageText", payload)
	return err
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator.
func (c *Client) AnswerCallbackQuery(id string) error {
	_, err := c.call("answerCallbackQuery", map[string]interface{}{
		"callback_query_id": id,
	})
	return err
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(offset int64, timeoutSeconds int) ([]Update, error) {
	result, err := c.call("getUpdates", map[string]interface{}{
		"offset":  offset,
		"timeout": timeoutSeconds,
		"allowed_updates": []string{
			"message", "callback_query",
		},
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}
