package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/semmidev/dumpkeeper/internal/config"
)

const requestTimeout = 30 * time.Second

// Telegram sends alerts as plain chat messages. The bot is created on the
// first alert and again on every later alert until creation succeeds, so a
// Bot API outage at startup does not disable alerts for good.
type Telegram struct {
	token    string
	endpoint string
	chatID   int64
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegram(cfg *config.TelegramConfig) (*Telegram, error) {
	return NewTelegramWithEndpoint(cfg.BotToken, cfg.ChatID, tgbotapi.APIEndpoint)
}

// NewTelegramWithEndpoint talks to a Bot API server other than the public one.
// endpoint is a format string taking the token and the method name.
func NewTelegramWithEndpoint(token, chatID, endpoint string) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	return &Telegram{
		token:    token,
		endpoint: endpoint,
		chatID:   id,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// Notify returns when the message is sent, the Bot API fails, or ctx is done,
// whichever comes first. Every HTTP call is also bounded by requestTimeout.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- t.send(message)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("failed to send telegram notification: %w", ctx.Err())
	}
}

func (t *Telegram) send(message string) error {
	bot, err := t.botAPI()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

func (t *Telegram) botAPI() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		return t.bot, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	t.bot = bot
	return bot, nil
}
