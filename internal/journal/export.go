package journal

import (
	"context"

	"github.com/rcliao/cad-agent/internal/model"
)

// SessionPatches returns every patch recorded for a session in application
// order. Replaying them onto an empty design reproduces the session's state.
func (j *SQLiteJournal) SessionPatches(ctx context.Context, sessionID string) ([]model.Patch, error) {
	if _, err := j.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT p.feature_id, p.action, p.data
		 FROM turn_patches p
		 JOIN turns t ON t.id = p.turn_id
		 WHERE t.session_id = ?
		 ORDER BY t.seq, p.seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatches(rows)
}
