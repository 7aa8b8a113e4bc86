// Package journal records sessions, turns, and applied patches in SQLite.
// It is a history of what was asked and answered; the live design is never
// rebuilt from it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/cad-agent/internal/model"
)

// MemoryPath opens a journal that lives only as long as the process.
const MemoryPath = ":memory:"

// ErrNotFound is returned when a session or turn does not exist.
var ErrNotFound = errors.New("not found")

// TurnParams holds parameters for recording a turn.
type TurnParams struct {
	SessionID string
	Request   string
	Prompt    string
	Response  string
	Patches   []model.Patch
	Skipped   int
	Err       error
}

// SQLiteJournal stores the journal in a SQLite database.
type SQLiteJournal struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteJournal opens or creates a journal at the given path.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), j.entropy).String()
}

func (j *SQLiteJournal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		model      TEXT NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		seq        INTEGER NOT NULL,
		request    TEXT NOT NULL,
		prompt     TEXT,
		response   TEXT,
		skipped    INTEGER NOT NULL DEFAULT 0,
		error      TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);

	CREATE TABLE IF NOT EXISTS turn_patches (
		turn_id    TEXT NOT NULL REFERENCES turns(id),
		seq        INTEGER NOT NULL,
		feature_id TEXT NOT NULL,
		action     TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (turn_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_patches_feature ON turn_patches(feature_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

// StartSession opens a new session for the given model name.
func (j *SQLiteJournal) StartSession(ctx context.Context, modelName string) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{ID: j.newID(), Model: modelName, StartedAt: now}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, model, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Model, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// RecordTurn stores a turn and its patches atomically.
func (j *SQLiteJournal) RecordTurn(ctx context.Context, p TurnParams) (*model.Turn, error) {
	now := time.Now().UTC()
	id := j.newID()

	var errText *string
	if p.Err != nil {
		s := p.Err.Error()
		errText = &s
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`, p.SessionID).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, seq, request, prompt, response, skipped, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.SessionID, seq, p.Request, p.Prompt, p.Response, p.Skipped, errText, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert turn: %w", err)
	}

	for i, pt := range p.Patches {
		data := pt.Data
		if len(data) == 0 {
			data = model.EmptyPayload
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO turn_patches (turn_id, seq, feature_id, action, data) VALUES (?, ?, ?, ?, ?)`,
			id, i, pt.FeatureID, string(pt.Action), string(data))
		if err != nil {
			return nil, fmt.Errorf("insert patch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	turn := &model.Turn{
		ID:        id,
		SessionID: p.SessionID,
		Seq:       seq,
		Request:   p.Request,
		Prompt:    p.Prompt,
		Response:  p.Response,
		Patches:   p.Patches,
		Skipped:   p.Skipped,
		CreatedAt: now,
	}
	if errText != nil {
		turn.Error = *errText
	}
	return turn, nil
}

// Session returns a session by id.
func (j *SQLiteJournal) Session(ctx context.Context, id string) (*model.Session, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT s.id, s.model, s.started_at, (SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id)
		 FROM sessions s WHERE s.id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}

// LatestSession returns the most recently started session.
func (j *SQLiteJournal) LatestSession(ctx context.Context) (*model.Session, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT s.id, s.model, s.started_at, (SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id)
		 FROM sessions s ORDER BY s.rowid DESC LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest session: %w", ErrNotFound)
	}
	return sess, err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*model.Session, error) {
	var s model.Session
	var startedAt string
	if err := row.Scan(&s.ID, &s.Model, &startedAt, &s.Turns); err != nil {
		return nil, err
	}
	s.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	return &s, nil
}

func scanTurn(row scanner) (model.Turn, error) {
	var t model.Turn
	var prompt, response, errText sql.NullString
	var createdAt string

	err := row.Scan(&t.ID, &t.SessionID, &t.Seq, &t.Request, &prompt, &response,
		&t.Skipped, &errText, &createdAt)
	if err != nil {
		return t, err
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if prompt.Valid {
		t.Prompt = prompt.String
	}
	if response.Valid {
		t.Response = response.String
	}
	if errText.Valid {
		t.Error = errText.String
	}
	return t, nil
}
