// Package model defines the core design and patch data types.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is the operation a patch applies to a feature.
type Action string

const (
	ActionInsert  Action = "INSERT"
	ActionReplace Action = "REPLACE"
	ActionDelete  Action = "DELETE"
)

// ValidActions are the allowed patch actions.
var ValidActions = map[Action]bool{
	ActionInsert:  true,
	ActionReplace: true,
	ActionDelete:  true,
}

// ParseAction upper-cases tok and reports whether it names a valid action.
func ParseAction(tok string) (Action, bool) {
	a := Action(strings.ToUpper(tok))
	return a, ValidActions[a]
}

// Payload is the opaque JSON value describing a primitive or modifier.
// It is kept as the raw (compacted) bytes so key order survives round trips.
type Payload = json.RawMessage

// EmptyPayload is used when a patch line carries no JSON content.
var EmptyPayload = Payload(`{}`)

// Patch is one instruction targeting a feature id.
type Patch struct {
	FeatureID string  `json:"feature_id"`
	Action    Action  `json:"action"`
	Data      Payload `json:"data"`
}

// String renders the patch back into a patch-language line.
func (p Patch) String() string {
	data := p.Data
	if len(data) == 0 {
		data = EmptyPayload
	}
	return fmt.Sprintf("AT %s %s %s", p.FeatureID, p.Action, data)
}
