// Package agent runs design turns: it sends a request plus the current
// design context to the model, parses the reply into patches, and applies them.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rcliao/cad-agent/internal/journal"
	"github.com/rcliao/cad-agent/internal/llm"
	"github.com/rcliao/cad-agent/internal/model"
	"github.com/rcliao/cad-agent/internal/patch"
	"github.com/rcliao/cad-agent/internal/store"
)

// Recorder receives the history of a session. *journal.SQLiteJournal implements it.
type Recorder interface {
	StartSession(ctx context.Context, modelName string) (*model.Session, error)
	RecordTurn(ctx context.Context, p journal.TurnParams) (*model.Turn, error)
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder journals every turn to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the logger used for parse diagnostics and journal failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Turn is the result of one Generate call.
type Turn struct {
	Patches     []model.Patch
	Diagnostics []patch.Diagnostic
	Response    string
}

// Session owns the design, the conversation, and the current journal session.
// It is not safe for concurrent use; turns are strictly sequential.
type Session struct {
	chat      llm.Chat
	design    *store.Design
	recorder  Recorder
	sessionID string
	log       *slog.Logger
}

// New creates a session with an empty design.
func New(ctx context.Context, chat llm.Chat, opts ...Option) *Session {
	s := &Session{
		chat:   chat,
		design: store.NewDesign(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startJournal(ctx)
	return s
}

// Generate converts a natural-language request into patches and applies them.
// If the model call fails, the design and conversation are unchanged.
func (s *Session) Generate(ctx context.Context, input string) ([]model.Patch, error) {
	turn, err := s.Turn(ctx, input)
	if err != nil {
		return nil, err
	}
	return turn.Patches, nil
}

// Turn is Generate with the parse diagnostics and raw response included.
func (s *Session) Turn(ctx context.Context, input string) (*Turn, error) {
	prompt := store.Prompt(input, s.design.Features())

	response, err := s.chat.Send(ctx, prompt)
	if err != nil {
		s.record(ctx, journal.TurnParams{Request: input, Prompt: prompt, Err: err})
		return nil, fmt.Errorf("generate patches: %w", err)
	}

	res := patch.Parse(response)
	for _, d := range res.Diagnostics {
		if d.Reason == patch.ReasonUnknownAction {
			s.log.Debug("skipping patch line with unknown action", "line", d.Text, "action", d.Detail)
			continue
		}
		s.log.Warn("failed to parse patch line", "line", d.Text, "reason", string(d.Reason), "detail", d.Detail)
	}

	s.design.Apply(res.Patches)

	s.record(ctx, journal.TurnParams{
		Request:  input,
		Prompt:   prompt,
		Response: response,
		Patches:  res.Patches,
		Skipped:  len(res.Diagnostics),
	})

	return &Turn{Patches: res.Patches, Diagnostics: res.Diagnostics, Response: response}, nil
}

// State returns a copy of the current features.
func (s *Session) State() *store.Features {
	return s.design.Features()
}

// Counter returns the highest feat_NNN number inserted this session.
func (s *Session) Counter() int {
	return s.design.Counter()
}

// NextID suggests the next conventional feature id.
func (s *Session) NextID() string {
	return s.design.NextID()
}

// SessionID returns the journal session id, empty when journaling is off.
func (s *Session) SessionID() string {
	return s.sessionID
}

// Model names the backing model.
func (s *Session) Model() string {
	return s.chat.Model()
}

// Reset discards the design, the counter, and the conversation, and opens a
// new journal session.
func (s *Session) Reset(ctx context.Context) {
	s.design = store.NewDesign()
	s.chat.Reset()
	s.startJournal(ctx)
}

// ExportPatchesJSON renders patches as an indented JSON array.
func (s *Session) ExportPatchesJSON(patches []model.Patch) (string, error) {
	return store.ExportPatches(patches)
}

func (s *Session) startJournal(ctx context.Context) {
	s.sessionID = ""
	if s.recorder == nil {
		return
	}
	sess, err := s.recorder.StartSession(ctx, s.chat.Model())
	if err != nil {
		s.log.Warn("journal unavailable", "error", err)
		return
	}
	s.sessionID = sess.ID
}

func (s *Session) record(ctx context.Context, p journal.TurnParams) {
	if s.recorder == nil || s.sessionID == "" {
		return
	}
	p.SessionID = s.sessionID
	if _, err := s.recorder.RecordTurn(ctx, p); err != nil {
		s.log.Warn("failed to journal turn", "error", err)
	}
}
