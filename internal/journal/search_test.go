package journal

import (
	"context"
	"testing"

	"github.com/rcliao/cad-agent/internal/model"
)

func TestListTurns_Basic(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	sess, _ := j.StartSession(ctx, "m")
	other, _ := j.StartSession(ctx, "m")

	j.RecordTurn(ctx, TurnParams{SessionID: sess.ID, Request: "Create a simple table with 4 legs"})
	j.RecordTurn(ctx, TurnParams{SessionID: sess.ID, Request: "Delete the second leg"})
	j.RecordTurn(ctx, TurnParams{SessionID: other.ID, Request: "Add a sphere"})

	// All sessions, newest first
	turns, err := j.ListTurns(ctx, ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Request != "Add a sphere" {
		t.Errorf("expected newest first, got %q", turns[0].Request)
	}

	// Session filter
	turns, err = j.ListTurns(ctx, ListParams{SessionID: sess.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}

	// Substring query
	turns, err = j.ListTurns(ctx, ListParams{Query: "leg"})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 results, got %d", len(turns))
	}

	// No results
	turns, err = j.ListTurns(ctx, ListParams{Query: "torus"})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected 0 results, got %d", len(turns))
	}
}

func TestListTurns_Limit(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	sess, _ := j.StartSession(ctx, "m")
	for i := 0; i < 5; i++ {
		j.RecordTurn(ctx, TurnParams{SessionID: sess.ID, Request: "turn"})
	}

	turns, err := j.ListTurns(ctx, ListParams{Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Errorf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Seq != 5 {
		t.Errorf("expected seq 5 first, got %d", turns[0].Seq)
	}
}

func TestListTurns_LoadsPatches(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	sess, _ := j.StartSession(ctx, "m")
	j.RecordTurn(ctx, TurnParams{
		SessionID: sess.ID,
		Request:   "box and ball",
		Skipped:   1,
		Patches: []model.Patch{
			cube("feat_001"),
			{FeatureID: "feat_002", Action: model.ActionInsert, Data: model.Payload(`{"type":"sphere","radius":5}`)},
		},
	})

	turns, err := j.ListTurns(ctx, ListParams{SessionID: sess.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	tr := turns[0]
	if tr.Skipped != 1 {
		t.Errorf("expected skipped 1, got %d", tr.Skipped)
	}
	if len(tr.Patches) != 2 || tr.Patches[1].FeatureID != "feat_002" {
		t.Fatalf("unexpected patches %+v", tr.Patches)
	}
	if string(tr.Patches[1].Data) != `{"type":"sphere","radius":5}` {
		t.Errorf("unexpected payload %s", tr.Patches[1].Data)
	}
}

func TestListTurns_QueryIsLiteral(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	sess, _ := j.StartSession(ctx, "m")

	for _, req := range []string{"Make it 50% larger", "Make it 500 larger", "rename make_box", "rename makeXbox", `path a\b`} {
		if _, err := j.RecordTurn(ctx, TurnParams{SessionID: sess.ID, Request: req}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  string
	}{
		{"50%", "Make it 50% larger"},
		{"make_box", "rename make_box"},
		{`a\b`, `path a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			turns, err := j.ListTurns(ctx, ListParams{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if len(turns) != 1 || turns[0].Request != tt.want {
				var got []string
				for _, tr := range turns {
					got = append(got, tr.Request)
				}
				t.Errorf("query %q: expected only %q, got %q", tt.query, tt.want, got)
			}
		})
	}
}
