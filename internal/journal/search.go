package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/cad-agent/internal/model"
)

// likeEscaper makes LIKE wildcards in a query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListParams holds parameters for listing turns.
type ListParams struct {
	SessionID string // empty means every session
	Query     string // substring match on the request text
	Limit     int
}

// ListTurns returns matching turns, newest first, with their patches.
func (j *SQLiteJournal) ListTurns(ctx context.Context, p ListParams) ([]model.Turn, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	args := []interface{}{}

	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if p.Query != "" {
		where = append(where, `request LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(p.Query)+"%")
	}

	query := fmt.Sprintf(`
		SELECT id, session_id, seq, request, prompt, response, skipped, error, created_at
		FROM turns
		WHERE %s
		ORDER BY rowid DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var turns []model.Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	// Patches are loaded after rows is closed: the journal may hold a single connection.
	for i := range turns {
		patches, err := j.turnPatches(ctx, turns[i].ID)
		if err != nil {
			return nil, err
		}
		turns[i].Patches = patches
	}
	return turns, nil
}

func (j *SQLiteJournal) turnPatches(ctx context.Context, turnID string) ([]model.Patch, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT feature_id, action, data FROM turn_patches WHERE turn_id = ? ORDER BY seq`, turnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatches(rows)
}

func scanPatches(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]model.Patch, error) {
	var patches []model.Patch
	for rows.Next() {
		var p model.Patch
		var action, data string
		if err := rows.Scan(&p.FeatureID, &action, &data); err != nil {
			return nil, err
		}
		p.Action = model.Action(action)
		p.Data = model.Payload(data)
		patches = append(patches, p)
	}
	return patches, rows.Err()
}
