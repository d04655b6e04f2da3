// Package notify delivers chat notifications through the Telegram Bot
// API. Delivery is best-effort: callers report failures in their result
// instead of aborting on them.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends messages to a single chat via a bot.
type Telegram struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegram creates a Telegram notifier for the given bot token and
// chat ID.
func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewTelegramWithBaseURL creates a notifier pointing at a custom API base
// URL (for testing).
func NewTelegramWithBaseURL(botToken, chatID, baseURL string) *Telegram {
	tg := NewTelegram(botToken, chatID)
	tg.baseURL = strings.TrimRight(baseURL, "/")
	return tg
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage posts one text message to the configured chat.
func (t *Telegram) SendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshaling telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	var apiResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decoding telegram response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram rejected message (HTTP %d): %s", resp.StatusCode, apiResp.Description)
	}
	return nil
}

// RecommendationsMessage renders the user-facing notification for a list
// of recommended titles.
func RecommendationsMessage(titles []string) string {
	var sb strings.Builder
	sb.WriteString("🎥 Aquí tienes tus recomendaciones de la IA:\n")
	for i, title := range titles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SyncMessage renders the notification sent after a completed library
// sync.
func SyncMessage(count int) string {
	return fmt.Sprintf("📚 Biblioteca sincronizada: %d películas enviadas al asistente.", count)
}
