package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cad-agent/internal/config"
)

type fakeServer struct {
	requests []openai.ChatCompletionRequest
	replies  []string
	fail     bool
	empty    bool
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, req)

	w.Header().Set("Content-Type", "application/json")
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
		return
	}
	resp := openai.ChatCompletionResponse{ID: "chatcmpl-1", Object: "chat.completion", Model: req.Model}
	if !f.empty {
		reply := ""
		if len(f.replies) > 0 {
			reply, f.replies = f.replies[0], f.replies[1:]
		}
		resp.Choices = []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
			FinishReason: openai.FinishReasonStop,
		}}
	}
	json.NewEncoder(w).Encode(resp)
}

func newTestChat(t *testing.T, f *fakeServer) *XAIChat {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewXAIChat(XAIOptions{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		Model:        "grok-3-fast",
		SystemPrompt: "you are a CAD assistant",
		HTTPClient:   srv.Client(),
	})
}

func TestXAIChat_SendKeepsConversation(t *testing.T) {
	f := &fakeServer{replies: []string{"AT feat_001 INSERT {}", "AT feat_001 DELETE {}"}}
	c := newTestChat(t, f)
	ctx := context.Background()

	reply, err := c.Send(ctx, "make a box")
	require.NoError(t, err)
	assert.Equal(t, "AT feat_001 INSERT {}", reply)

	_, err = c.Send(ctx, "remove it")
	require.NoError(t, err)

	require.Len(t, f.requests, 2)
	assert.Equal(t, "grok-3-fast", f.requests[0].Model)

	second := f.requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, second[0].Role)
	assert.Equal(t, "make a box", second[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, second[2].Role)
	assert.Equal(t, "remove it", second[3].Content)
	assert.Equal(t, 4, c.Len())
}

func TestXAIChat_FailureLeavesHistory(t *testing.T) {
	f := &fakeServer{replies: []string{"ok"}}
	c := newTestChat(t, f)
	ctx := context.Background()

	_, err := c.Send(ctx, "first")
	require.NoError(t, err)

	f.fail = true
	_, err = c.Send(ctx, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Equal(t, 2, c.Len())

	f.fail = false
	f.replies = []string{"retried"}
	reply, err := c.Send(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "retried", reply)
	// system + first exchange + retried message; the failed attempt left no trace.
	assert.Len(t, f.requests[2].Messages, 4)
}

func TestXAIChat_NoChoices(t *testing.T) {
	c := newTestChat(t, &fakeServer{empty: true})
	_, err := c.Send(context.Background(), "hello")
	assert.True(t, errors.Is(err, ErrNoChoices))
	assert.Equal(t, 0, c.Len())
}

func TestXAIChat_Reset(t *testing.T) {
	f := &fakeServer{replies: []string{"a", "b"}}
	c := newTestChat(t, f)
	ctx := context.Background()

	c.Send(ctx, "one")
	c.Reset()
	assert.Equal(t, 0, c.Len())

	c.Send(ctx, "two")
	require.Len(t, f.requests, 2)
	msgs := f.requests[1].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "you are a CAD assistant", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
}

func TestNewFromConfig_RequiresKey(t *testing.T) {
	cfg := config.Default()
	_, err := NewFromConfig(cfg, "sys")
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)

	cfg.LLM.APIKey = "k"
	c, err := NewFromConfig(cfg, "sys")
	require.NoError(t, err)
	assert.Equal(t, "grok-3-fast", c.Model())
}

func TestScriptedChat(t *testing.T) {
	s := NewScriptedChat("one")
	s.Replies = append(s.Replies, Reply{Err: errors.New("down")})
	ctx := context.Background()

	got, err := s.Send(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	_, err = s.Send(ctx, "b")
	assert.EqualError(t, err, "down")

	_, err = s.Send(ctx, "c")
	assert.ErrorIs(t, err, ErrScriptExhausted)
	assert.Equal(t, []string{"a", "b", "c"}, s.Received)
}
