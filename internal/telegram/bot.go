package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/metrics"
)

// Sender is the part of the Telegram bot API the bot's components use.
// *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram bot API
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logrus.Logger
	router *Router
}

// NewBot creates a new Telegram bot instance. m may be nil.
func NewBot(token string, logger *logrus.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger, m),
	}, nil
}

// Sender returns the API the bot sends through.
func (b *Bot) Sender() Sender {
	return b.api
}

// Router returns the router updates are dispatched to.
func (b *Bot) Router() *Router {
	return b.router
}

// Start starts the bot with long polling. It blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	// Delete webhook if exists and use polling
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes incoming updates
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	b.router.HandleUpdate(ctx, b.api, update)
}

// SendMessage sends a plain text message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	return SendText(b.api, chatID, text)
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

// SendText sends text to a chat without any parse mode.
func SendText(bot Sender, chatID int64, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMarkdown sends a MarkdownV2 message. Dynamic parts of text must be
// escaped with tgbotapi.EscapeText.
func SendMarkdown(bot Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
