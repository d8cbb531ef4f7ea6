package test

import (
	"context"
	"sync"

	"github.com/chanddari/subbot/internal/adapter/telegram"
)

// SentMessage records one outbound SendMessage call.
type SentMessage struct {
	ChatID int64
	Text   string
	Markup telegram.Markup
}

// EditedMessage records one outbound EditMessageText call.
type EditedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
}

// GatewayStub implements the messaging gateway with recorded calls.
type GatewayStub struct {
	mu        sync.Mutex
	Sent      []SentMessage
	Edited    []EditedMessage
	SendErr   error
	EditErr   error
	FileURLFn func(context.Context, string) (string, error)
}

// SendMessage records the call and returns the configured error.
func (s *GatewayStub) SendMessage(ctx context.Context, chatID int64, text string, markup telegram.Markup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.Sent = append(s.Sent, SentMessage{ChatID: chatID, Text: text, Markup: markup})
	return nil
}

// EditMessageText records the call and returns the configured error.
func (s *GatewayStub) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EditErr != nil {
		return s.EditErr
	}
	s.Edited = append(s.Edited, EditedMessage{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

// FileURL delegates to FileURLFn or returns a deterministic URL.
func (s *GatewayStub) FileURL(ctx context.Context, fileID string) (string, error) {
	if s.FileURLFn != nil {
		return s.FileURLFn(ctx, fileID)
	}
	return "https://files.local/" + fileID, nil
}

// SentTo returns the messages delivered to one chat, in order.
func (s *GatewayStub) SentTo(chatID int64) []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SentMessage
	for _, m := range s.Sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// LastSent returns the most recent message or nil.
func (s *GatewayStub) LastSent() *SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return nil
	}
	m := s.Sent[len(s.Sent)-1]
	return &m
}
