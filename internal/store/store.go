// Package store holds the in-memory design: an insertion-ordered feature
// map, the patch applier, and the context block derived from them.
package store

import (
	"bytes"
	"encoding/json"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rcliao/cad-agent/internal/model"
)

// Features maps feature ids to payloads in first-insertion order.
// Replacing a payload keeps the entry where it was.
type Features struct {
	m *orderedmap.OrderedMap[string, model.Payload]
}

// NewFeatures returns an empty store.
func NewFeatures() *Features {
	return &Features{m: orderedmap.New[string, model.Payload]()}
}

// Upsert sets the payload for id, inserting it at the end if absent.
func (f *Features) Upsert(id string, data model.Payload) {
	f.m.Set(id, clonePayload(data))
}

// Remove deletes id if present and reports whether it was.
func (f *Features) Remove(id string) bool {
	_, ok := f.m.Delete(id)
	return ok
}

// Get returns a copy of the payload for id.
func (f *Features) Get(id string) (model.Payload, bool) {
	data, ok := f.m.Get(id)
	if !ok {
		return nil, false
	}
	return clonePayload(data), true
}

// Len returns the number of features.
func (f *Features) Len() int {
	return f.m.Len()
}

// All iterates features in insertion order.
func (f *Features) All() iter.Seq2[string, model.Payload] {
	return func(yield func(string, model.Payload) bool) {
		for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// IDs returns the feature ids in insertion order.
func (f *Features) IDs() []string {
	ids := make([]string, 0, f.m.Len())
	for id := range f.All() {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns a deep copy that shares nothing with f.
func (f *Features) Snapshot() *Features {
	cp := NewFeatures()
	for id, data := range f.All() {
		cp.Upsert(id, data)
	}
	return cp
}

// MarshalJSON encodes the store as a JSON object in insertion order.
func (f *Features) MarshalJSON() ([]byte, error) {
	return f.m.MarshalJSON()
}

// Indent renders the store as indented JSON, the format of the "state" view.
func (f *Features) Indent() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func clonePayload(p model.Payload) model.Payload {
	if p == nil {
		return nil
	}
	return append(model.Payload(nil), p...)
}
