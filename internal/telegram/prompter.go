package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConfirmPrefix routes confirmation button presses to the Prompter.
const ConfirmPrefix = "confirm"

const (
	answerYes = "yes"
	answerNo  = "no"
)

type pendingQuestion struct {
	chatID int64
	answer chan bool
}

// Prompter asks yes/no questions with an inline keyboard. Register it on the
// router under ConfirmPrefix.
type Prompter struct {
	sender  Sender
	timeout time.Duration
	logger  *logrus.Logger

	mu      sync.Mutex
	pending map[string]pendingQuestion
}

// NewPrompter creates a Prompter. A question without an answer after timeout
// counts as declined.
func NewPrompter(sender Sender, timeout time.Duration, logger *logrus.Logger) *Prompter {
	return &Prompter{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]pendingQuestion),
	}
}

// Ask sends question to chatID and blocks until it is answered, times out or
// ctx is done.
func (p *Prompter) Ask(ctx context.Context, chatID int64, question string) (bool, error) {
	token := uuid.NewString()
	q := pendingQuestion{chatID: chatID, answer: make(chan bool, 1)}

	p.mu.Lock()
	p.pending[token] = q
	p.mu.Unlock()
	defer p.forget(token)

	msg := tgbotapi.NewMessage(chatID, question)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Yes", CallbackData(ConfirmPrefix, token+":"+answerYes)),
		tgbotapi.NewInlineKeyboardButtonData("❌ No", CallbackData(ConfirmPrefix, token+":"+answerNo)),
	))
	sent, err := p.sender.Send(msg)
	if err != nil {
		return false, fmt.Errorf("failed to send confirmation: %w", err)
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case yes := <-q.answer:
		return yes, nil
	case <-timer.C:
		p.logger.WithField("chat_id", chatID).Info("Confirmation timed out")
		p.close(chatID, sent.MessageID, question, "⌛ No answer, nothing was changed.")
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Pending returns the number of unanswered questions.
func (p *Prompter) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// HandleCallback implements CallbackHandler.
func (p *Prompter) HandleCallback(ctx context.Context, bot Sender, query *tgbotapi.CallbackQuery, payload string) error {
	token, answer, ok := strings.Cut(payload, ":")
	if !ok || (answer != answerYes && answer != answerNo) {
		return fmt.Errorf("malformed confirmation data %q", payload)
	}
	if query.Message == nil {
		return fmt.Errorf("confirmation without message")
	}
	chatID := query.Message.Chat.ID

	p.mu.Lock()
	q, exists := p.pending[token]
	if exists && q.chatID == chatID {
		delete(p.pending, token)
	}
	p.mu.Unlock()

	if !exists || q.chatID != chatID {
		p.close(chatID, query.Message.MessageID, query.Message.Text, "This question has expired.")
		return nil
	}

	yes := answer == answerYes
	q.answer <- yes

	reply := "Answer: No"
	if yes {
		reply = "Answer: Yes"
	}
	p.close(chatID, query.Message.MessageID, query.Message.Text, reply)
	return nil
}

func (p *Prompter) forget(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, token)
}

// close replaces the question message, which drops its keyboard.
func (p *Prompter) close(chatID int64, messageID int, question, note string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, question+"\n\n"+note)
	if _, err := p.sender.Send(edit); err != nil {
		p.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to close confirmation")
	}
}
