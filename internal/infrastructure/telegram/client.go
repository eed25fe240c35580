package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

// Client is a minimal Bot API client covering what the intake needs:
// getUpdates long polling plus sendMessage/sendPhoto. It implements
// domain.Messenger.
type Client struct {
	baseURL     string
	token       string
	pollTimeout time.Duration

	pollHTTP *http.Client
	sendHTTP *http.Client
}

func New(apiURL, token string, pollTimeout time.Duration) *Client {
	return &Client{
		baseURL:     apiURL,
		token:       token,
		pollTimeout: pollTimeout,
		// The poll client must outlive the server-side long-poll window.
		pollHTTP: &http.Client{Timeout: pollTimeout + 10*time.Second},
		sendHTTP: &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, hc *http.Client, method string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s encode: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("telegram %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("telegram %s decode: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: %s", method, api.Description)
	}
	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("telegram %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for the next batch of updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(c.pollTimeout.Seconds()),
		"allowed_updates": []string{"message"},
	}
	var updates []Update
	if err := c.call(ctx, c.pollHTTP, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, c.sendHTTP, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

func (c *Client) SendHTML(ctx context.Context, chatID int64, html string, button *domain.LinkButton) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       html,
		"parse_mode": "HTML",
	}
	if button != nil {
		payload["reply_markup"] = inlineKeyboardMarkup{
			InlineKeyboard: [][]inlineKeyboardButton{{
				{Text: button.Label, URL: button.URL},
			}},
		}
	}
	return c.call(ctx, c.sendHTTP, "sendMessage", payload, nil)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	return c.call(ctx, c.sendHTTP, "sendPhoto", map[string]any{
		"chat_id": chatID,
		"photo":   photoURL,
		"caption": caption,
	}, nil)
}
