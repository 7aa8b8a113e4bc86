package llm

import (
	"context"
	"errors"
)

// ErrScriptExhausted is returned by ScriptedChat when it runs out of replies.
var ErrScriptExhausted = errors.New("scripted chat: no replies left")

// Reply is one canned answer of a ScriptedChat.
type Reply struct {
	Text string
	Err  error
}

// ScriptedChat replays canned replies in order, for tests that must not
// reach a real model.
type ScriptedChat struct {
	Replies  []Reply
	Received []string // every message passed to Send
	Resets   int
	ModelID  string
	next     int
}

// NewScriptedChat returns a chat answering with texts in order.
func NewScriptedChat(texts ...string) *ScriptedChat {
	s := &ScriptedChat{ModelID: "scripted"}
	for _, t := range texts {
		s.Replies = append(s.Replies, Reply{Text: t})
	}
	return s
}

func (s *ScriptedChat) Send(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Received = append(s.Received, message)
	if s.next >= len(s.Replies) {
		return "", ErrScriptExhausted
	}
	r := s.Replies[s.next]
	s.next++
	return r.Text, r.Err
}

func (s *ScriptedChat) Reset() { s.Resets++ }

func (s *ScriptedChat) Model() string { return s.ModelID }
