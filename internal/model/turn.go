package model

import "time"

// Session is one conversation between two resets.
type Session struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	StartedAt time.Time `json:"started_at"`
	Turns     int       `json:"turns"`
}

// Turn records one request/response exchange and the patches it produced.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Request   string    `json:"request"`
	Prompt    string    `json:"prompt,omitempty"`
	Response  string    `json:"response,omitempty"`
	Patches   []Patch   `json:"patches,omitempty"`
	Skipped   int       `json:"skipped,omitempty"` // lines dropped by the parser
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
