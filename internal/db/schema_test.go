package db

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestTriggersRejectInvalidRows(t *testing.T) {
	// in-memory DB
	db, err := sql.Open("sqlite", "file:test_triggers?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	insert := func(kind, payload, op interface{}) error {
		_, err := db.Exec(`INSERT INTO command_journal (command_id, kind, summary, payload, operation, created_at)
			VALUES ('c', ?, 's', ?, ?, datetime('now'))`, kind, payload, op)
		return err
	}
	tests := []struct {
		name              string
		kind, payload, op interface{}
		wantErr           bool
	}{
		{"valid", "move_keys", `{"kind":"move_keys"}`, "do", false},
		{"empty kind", "   ", "{}", "do", true},
		{"blob kind", []byte{0xff, 0xfe}, "{}", "do", true},
		{"bad operation", "move_keys", "{}", "apply", true},
		{"bad payload", "move_keys", "{not json", "undo", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := insert(tt.kind, tt.payload, tt.op)
			if tt.wantErr && err == nil {
				t.Fatalf("expected insert to be rejected by trigger")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected insert error: %v", err)
			}
		})
	}
}
