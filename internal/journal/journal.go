// Package journal persists the history of edit commands in the SQLite
// database opened by internal/db.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VoxDroid/dopesheet/internal/command"
)

// Operation says what happened to a command.
type Operation string

// Journal operations.
const (
	OpDo   Operation = "do"
	OpUndo Operation = "undo"
	OpRedo Operation = "redo"
)

// Entry is one journal row.
type Entry struct {
	ID        int64
	Scene     sql.NullString
	Command   command.Command
	Summary   string
	Operation Operation
	CreatedAt time.Time
}

// Repository reads and writes the command journal.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new Repository using db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Record appends c to the journal under scene.
func (r *Repository) Record(scene string, c command.Command, op Operation) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	var node, sc sql.NullString
	if c.Node != "" {
		node = sql.NullString{String: string(c.Node), Valid: true}
	}
	if scene != "" {
		sc = sql.NullString{String: scene, Valid: true}
	}
	_, err = r.db.Exec(`INSERT INTO command_journal
		(command_id, kind, node, summary, payload, operation, created_at, scene)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Kind.String(), node, c.Describe(), string(payload), string(op), r.now().UTC().Format(time.RFC3339Nano), sc)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns the newest entries first. A limit of zero or less returns
// every entry.
func (r *Repository) List(limit int) ([]Entry, error) {
	q := `SELECT id, scene, summary, payload, operation, created_at FROM command_journal ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		var payload, op, created string
		if err := rows.Scan(&e.ID, &e.Scene, &e.Summary, &payload, &op, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &e.Command); err != nil {
			return nil, fmt.Errorf("unmarshal command %d: %w", e.ID, err)
		}
		e.Operation = Operation(op)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse time of entry %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear deletes every entry and returns how many were removed.
func (r *Repository) Clear() (int64, error) {
	res, err := r.db.Exec("DELETE FROM command_journal")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection used by the Repository.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
