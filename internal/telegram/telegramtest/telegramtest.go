// Package telegramtest provides a recording Sender and update builders for
// tests of bot handlers.
package telegramtest

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender records everything sent through it.
type Sender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	err      error
}

// Fail makes every later Send return err.
func (s *Sender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Send implements telegram.Sender.
func (s *Sender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c)
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

// Request implements telegram.Sender.
func (s *Sender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// Sent returns the chattables sent so far.
func (s *Sender) Sent() []tgbotapi.Chattable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), s.sent...)
}

// Requests returns the chattables passed to Request so far.
func (s *Sender) Requests() []tgbotapi.Chattable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), s.requests...)
}

// Messages returns the new messages sent so far, in order.
func (s *Sender) Messages() []tgbotapi.MessageConfig {
	var out []tgbotapi.MessageConfig
	for _, c := range s.Sent() {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

// Edits returns the message edits sent so far, in order.
func (s *Sender) Edits() []tgbotapi.EditMessageTextConfig {
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range s.Sent() {
		if edit, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, edit)
		}
	}
	return out
}

// LastText returns the text of the last new message, or "".
func (s *Sender) LastText() string {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

// Reset forgets everything recorded.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.requests = nil
}

// Command builds a command message such as "/add Mom | Birthday" in chatID.
func Command(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		length = i
	}
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID, UserName: "tester"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

// Press builds a callback query for pressing a button with data under
// message messageID in chatID.
func Press(chatID int64, messageID int, text, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}, Text: text},
		Data:    data,
	}
}

// ButtonData returns the callback data of every inline button of msg.
func ButtonData(msg tgbotapi.MessageConfig) []string {
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}
