package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Bot is a minimal Telegram Bot API client used for admin notifications.
type Bot struct {
	baseURL string
	client  *http.Client
}

func NewBot(token string) *Bot {
	return &Bot{
		baseURL: "https://api.telegram.org/bot" + token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (b *Bot) SendMessage(chatID, text string) error {
	return b.SendMessageContext(context.Background(), chatID, text)
}

func (b *Bot) SendMessageContext(ctx context.Context, chatID, text string) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", text)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.baseURL+"/sendMessage",
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}

	return nil
}
