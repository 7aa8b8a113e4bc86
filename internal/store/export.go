package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rcliao/cad-agent/internal/model"
)

// ExportPatches renders a batch as an indented JSON array of
// {feature_id, action, data} records for downstream consumers.
func ExportPatches(patches []model.Patch) (string, error) {
	if patches == nil {
		patches = []model.Patch{}
	}
	b, err := json.MarshalIndent(patches, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export patches: %w", err)
	}
	return string(b), nil
}

// ImportPatches decodes an exported batch. Records with an unknown action or
// an empty feature id are rejected. Payloads are compacted so an indented
// export replays to the same single-line values the parser produces.
func ImportPatches(data []byte) ([]model.Patch, error) {
	var patches []model.Patch
	if err := json.Unmarshal(data, &patches); err != nil {
		return nil, fmt.Errorf("parse patches: %w", err)
	}
	for i := range patches {
		p := &patches[i]
		action, ok := model.ParseAction(string(p.Action))
		if !ok || p.FeatureID == "" {
			return nil, fmt.Errorf("patch %d: invalid record (id %q, action %q)", i, p.FeatureID, p.Action)
		}
		p.Action = action
		if len(p.Data) == 0 {
			p.Data = append(model.Payload(nil), model.EmptyPayload...)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, p.Data); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		p.Data = model.Payload(buf.Bytes())
	}
	return patches, nil
}
