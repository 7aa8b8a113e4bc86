package journal

import (
	"context"
	"os"
)

// Stats holds journal statistics.
type Stats struct {
	DBPath      string        `json:"db_path"`
	DBSizeBytes int64         `json:"db_size_bytes"`
	Sessions    int           `json:"sessions"`
	Turns       int           `json:"turns"`
	FailedTurns int           `json:"failed_turns"`
	Patches     int           `json:"patches"`
	Actions     []ActionStats `json:"actions"`
}

// ActionStats holds per-action patch counts.
type ActionStats struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// Stats returns journal statistics.
func (j *SQLiteJournal) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions)
	j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&st.Turns)
	j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE error IS NOT NULL`).Scan(&st.FailedTurns)
	j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turn_patches`).Scan(&st.Patches)

	rows, err := j.db.QueryContext(ctx, `
		SELECT action, COUNT(*) AS cnt
		FROM turn_patches
		GROUP BY action ORDER BY cnt DESC, action`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var a ActionStats
		rows.Scan(&a.Action, &a.Count)
		st.Actions = append(st.Actions, a)
	}

	return st, nil
}
