package store

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rcliao/cad-agent/internal/model"
)

// featIDRegex matches ids of the default feat_NNN convention.
var featIDRegex = regexp.MustCompile(`^feat_(\d+)$`)

// Design is the mutable state of one session: the features and the
// highest feat_NNN number ever inserted.
type Design struct {
	features *Features
	counter  int
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{features: NewFeatures()}
}

// Apply applies patches left to right. INSERT and REPLACE both upsert;
// DELETE of an absent id is a no-op. Only INSERT advances the counter.
func (d *Design) Apply(patches []model.Patch) {
	for _, p := range patches {
		d.apply(p)
	}
}

func (d *Design) apply(p model.Patch) {
	switch p.Action {
	case model.ActionInsert:
		d.features.Upsert(p.FeatureID, p.Data)
		if n, ok := FeatureNumber(p.FeatureID); ok && n > d.counter {
			d.counter = n
		}
	case model.ActionReplace:
		d.features.Upsert(p.FeatureID, p.Data)
	case model.ActionDelete:
		d.features.Remove(p.FeatureID)
	}
}

// Features returns a snapshot of the current features.
func (d *Design) Features() *Features {
	return d.features.Snapshot()
}

// Len returns the number of live features.
func (d *Design) Len() int {
	return d.features.Len()
}

// Counter returns the highest feat_NNN number inserted so far. Deletes never lower it.
func (d *Design) Counter() int {
	return d.counter
}

// NextID suggests the id following the counter. The design never assigns ids itself.
func (d *Design) NextID() string {
	return fmt.Sprintf("feat_%03d", d.counter+1)
}

// Context renders the context block for the current features.
func (d *Design) Context() string {
	return ContextBlock(d.features)
}

// FeatureNumber extracts N from an id of the form feat_N.
func FeatureNumber(id string) (int, bool) {
	m := featIDRegex.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
