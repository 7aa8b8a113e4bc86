// Package patch parses the line-oriented patch language:
//
//	AT <feature_id> <ACTION> <json_content>
//
// Parsing is total. Lines that are not patches are ignored, and malformed
// patch lines are dropped with a Diagnostic so the rest of the batch survives.
package patch

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/rcliao/cad-agent/internal/model"
)

// Keyword opens every patch line.
const Keyword = "AT"

// Reason classifies why a line was dropped.
type Reason string

const (
	ReasonMissingTokens Reason = "missing feature id or action"
	ReasonUnknownAction Reason = "unknown action"
	ReasonInvalidJSON   Reason = "invalid json"
)

// Diagnostic describes a dropped patch line.
type Diagnostic struct {
	Line   int    `json:"line"` // 1-based
	Text   string `json:"text"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of parsing a block of text.
type Result struct {
	Patches     []model.Patch
	Diagnostics []Diagnostic
}

// Parse turns raw text into patches in input order.
func Parse(text string) Result {
	var res Result
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		p, diag, ok := ParseLine(line)
		if diag != nil {
			diag.Line = i + 1
			res.Diagnostics = append(res.Diagnostics, *diag)
			continue
		}
		if ok {
			res.Patches = append(res.Patches, p)
		}
	}
	return res
}

// ParseLine parses a single trimmed line. ok is false when the line is not a
// patch at all (prose) or was rejected; a rejection also returns a Diagnostic.
func ParseLine(line string) (p model.Patch, diag *Diagnostic, ok bool) {
	kw, rest := nextToken(line)
	if kw != Keyword {
		return p, nil, false
	}

	id, rest := nextToken(rest)
	tok, rest := nextToken(rest)
	if id == "" || tok == "" {
		return p, &Diagnostic{Text: line, Reason: ReasonMissingTokens}, false
	}

	action, valid := model.ParseAction(tok)
	if !valid {
		return p, &Diagnostic{Text: line, Reason: ReasonUnknownAction, Detail: tok}, false
	}

	data, err := parsePayload(rest)
	if err != nil {
		return p, &Diagnostic{Text: line, Reason: ReasonInvalidJSON, Detail: err.Error()}, false
	}

	return model.Patch{FeatureID: id, Action: action, Data: data}, nil, true
}

func parsePayload(s string) (model.Payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return append(model.Payload(nil), model.EmptyPayload...), nil
	}
	var buf bytes.Buffer
	// Compact validates and rejects trailing values after the first one.
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, err
	}
	return model.Payload(buf.Bytes()), nil
}

// nextToken splits off the first whitespace-delimited token of s.
func nextToken(s string) (tok, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}
