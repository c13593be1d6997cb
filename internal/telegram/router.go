package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/metrics"
)

// Texts sent by the router itself.
const (
	TextCommandFailed  = "❌ An error occurred while processing your command. Please try again."
	TextUnknownCommand = "❓ Unknown command. Use /help to see available commands."
)

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error
}

// CommandFunc adapts a function to CommandHandler.
type CommandFunc func(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error

// Handle implements CommandHandler.
func (f CommandFunc) Handle(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error {
	return f(ctx, bot, message, args)
}

// CallbackHandler handles inline keyboard presses whose data starts with
// the prefix it was registered for. payload is the data after "prefix:".
type CallbackHandler interface {
	HandleCallback(ctx context.Context, bot Sender, query *tgbotapi.CallbackQuery, payload string) error
}

// CallbackData builds inline button data routed to the handler of prefix.
func CallbackData(prefix, payload string) string {
	return prefix + ":" + payload
}

// Router handles message routing and command parsing
type Router struct {
	logger  *logrus.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	handlers  map[string]CommandHandler
	callbacks map[string]CallbackHandler
}

// NewRouter creates a new message router. m may be nil.
func NewRouter(logger *logrus.Logger, m *metrics.Metrics) *Router {
	return &Router{
		logger:    logger,
		metrics:   m,
		handlers:  make(map[string]CommandHandler),
		callbacks: make(map[string]CallbackHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// RegisterCallback registers a handler for callback data starting with
// prefix.
func (r *Router) RegisterCallback(prefix string, handler CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[prefix] = handler
	r.logger.Debugf("Registered callback: %s", prefix)
}

// HandleUpdate dispatches one update.
func (r *Router) HandleUpdate(ctx context.Context, bot Sender, update tgbotapi.Update) {
	if update.Message != nil {
		r.HandleMessage(ctx, bot, update.Message)
	} else if update.CallbackQuery != nil {
		r.HandleCallbackQuery(ctx, bot, update.CallbackQuery)
	}
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(ctx context.Context, bot Sender, message *tgbotapi.Message) {
	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.UserName
	}
	log := r.logger.WithFields(fields)

	// Only commands are processed. Message text is not logged, it may
	// carry a password.
	if message.Text == "" || !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())
	log = log.WithField("command", command)
	log.Info("Received command")

	r.mu.RLock()
	handler, exists := r.handlers[command]
	r.mu.RUnlock()

	if !exists {
		log.Warn("Unknown command")
		r.reply(bot, message.Chat.ID, TextUnknownCommand)
		return
	}

	err := handler.Handle(ctx, bot, message, args)
	if r.metrics != nil {
		r.metrics.CommandProcessed(command, err)
	}
	if err != nil {
		log.WithError(err).Error("Command handler failed")
		r.reply(bot, message.Chat.ID, TextCommandFailed)
	}
}

// HandleCallbackQuery handles callback queries from inline keyboards
func (r *Router) HandleCallbackQuery(ctx context.Context, bot Sender, query *tgbotapi.CallbackQuery) {
	log := r.logger.WithFields(logrus.Fields{
		"callback_id": query.ID,
		"data":        query.Data,
	})
	if query.From != nil {
		log = log.WithField("user_id", query.From.ID)
	}
	log.Info("Received callback query")

	// Answer the callback query to remove loading state
	if _, err := bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.WithError(err).Warn("Failed to answer callback query")
	}

	prefix, payload, _ := strings.Cut(query.Data, ":")
	r.mu.RLock()
	handler, exists := r.callbacks[prefix]
	r.mu.RUnlock()
	if !exists {
		log.Warn("Unknown callback")
		return
	}

	err := handler.HandleCallback(ctx, bot, query, payload)
	if r.metrics != nil {
		r.metrics.CommandProcessed("callback:"+prefix, err)
	}
	if err != nil {
		log.WithError(err).Error("Callback handler failed")
	}
}

func (r *Router) reply(bot Sender, chatID int64, text string) {
	if err := SendText(bot, chatID, text); err != nil {
		r.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}
