// internal/storage/sqlitestore.go
//
// SQLite 後端（modernc.org/sqlite，純 Go 無 cgo）。
// 每次 Save 在單一交易內整批替換所有資料列，語意與 JSON 快照相同：
// 檔案內容永遠是「某一次完整保存」的結果，不會出現半套狀態。
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS codeshare_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	position        INTEGER NOT NULL,
	name            TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	code            TEXT NOT NULL,
	dirty           INTEGER NOT NULL DEFAULT 0,
	current_version INTEGER NOT NULL DEFAULT 0,
	poll_prompt     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS snapshots (
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	id          INTEGER NOT NULL,
	timestamp   TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	code        TEXT NOT NULL,
	PRIMARY KEY (session_id, position)
);

CREATE TABLE IF NOT EXISTS messages (
	id            TEXT NOT NULL,
	session_id    TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	parent_id     TEXT NOT NULL DEFAULT '',
	position      INTEGER NOT NULL,
	text          TEXT NOT NULL,
	timestamp     TEXT NOT NULL,
	user_name     TEXT NOT NULL,
	is_instructor INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, id)
);
CREATE INDEX IF NOT EXISTS idx_messages_parent ON messages(session_id, parent_id, position);

CREATE TABLE IF NOT EXISTS votes (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	voter      TEXT NOT NULL,
	choice     TEXT NOT NULL,
	PRIMARY KEY (session_id, voter)
);
`

// SQLite 為以 SQLite 檔案保存狀態的後端。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 開啟（必要時建立）資料庫並套用 pragma 與 schema。
// path 可為 ":memory:"，供測試使用。
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// :memory: 每條連線各自一份資料庫，限制為單一連線
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save 以單一交易整批替換所有資料。
func (s *SQLite) Save(ctx context.Context, st State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 子表皆為 ON DELETE CASCADE
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}

	for i, ps := range st.Sessions {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sessions (id, position, name, created_at, code, dirty, current_version, poll_prompt)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ps.ID, i, ps.Name, formatTime(ps.CreatedAt), ps.Code, boolInt(ps.Dirty), ps.Current, ps.Poll.Prompt,
		); err != nil {
			return fmt.Errorf("sqlite: insert session %s: %w", ps.ID, err)
		}
		for pos, snap := range ps.Snapshots {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO snapshots (session_id, position, id, timestamp, title, description, code)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				ps.ID, pos, snap.ID, formatTime(snap.Timestamp), snap.Title, snap.Description, snap.Code,
			); err != nil {
				return fmt.Errorf("sqlite: insert snapshot: %w", err)
			}
		}
		for pos, q := range ps.Questions {
			if err = insertMessage(ctx, tx, ps.ID, "", pos, q); err != nil {
				return err
			}
			for rpos, r := range q.Replies {
				if err = insertMessage(ctx, tx, ps.ID, q.ID, rpos, r); err != nil {
					return err
				}
			}
		}
		for voter, choice := range ps.Poll.Votes {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO votes (session_id, voter, choice) VALUES (?, ?, ?)`,
				ps.ID, voter, choice,
			); err != nil {
				return fmt.Errorf("sqlite: insert vote: %w", err)
			}
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO codeshare_meta (key, value) VALUES ('saved_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("sqlite: meta: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO codeshare_meta (key, value) VALUES ('version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(max(st.Meta.Version, 1)),
	); err != nil {
		return fmt.Errorf("sqlite: meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID, parentID string, pos int, m PersistMessage) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, parent_id, position, text, timestamp, user_name, is_instructor)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, sessionID, parentID, pos, m.Text, formatTime(m.Timestamp), m.UserName, boolInt(m.IsInstructor),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert message %s: %w", m.ID, err)
	}
	return nil
}

// Load 讀回最近一次 Save 的完整狀態；從未保存過則回傳 ErrNoState。
func (s *SQLite) Load(ctx context.Context) (State, error) {
	var st State

	var savedAt, version string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM codeshare_meta WHERE key = 'saved_at'`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNoState
	}
	if err != nil {
		return st, fmt.Errorf("sqlite: meta: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM codeshare_meta WHERE key = 'version'`).Scan(&version); err != nil {
		return st, fmt.Errorf("sqlite: meta version: %w", err)
	}
	ts, err := parseTime(savedAt)
	if err != nil {
		return st, fmt.Errorf("sqlite: meta saved_at: %w", err)
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return st, fmt.Errorf("sqlite: meta version: %w", err)
	}
	st.Meta = Meta{Storage: "sqlite", Timestamp: ts, Version: v}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, code, dirty, current_version, poll_prompt
		 FROM sessions ORDER BY position`)
	if err != nil {
		return st, fmt.Errorf("sqlite: sessions: %w", err)
	}
	for rows.Next() {
		var (
			ps        PersistSession
			createdAt string
			dirty     int
		)
		if err := rows.Scan(&ps.ID, &ps.Name, &createdAt, &ps.Code, &dirty, &ps.Current, &ps.Poll.Prompt); err != nil {
			rows.Close()
			return st, fmt.Errorf("sqlite: scan session: %w", err)
		}
		if ps.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return st, fmt.Errorf("sqlite: session %s created_at: %w", ps.ID, err)
		}
		ps.Dirty = dirty != 0
		ps.Poll.Votes = make(map[string]string)
		st.Sessions = append(st.Sessions, ps)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("sqlite: sessions: %w", err)
	}

	for i := range st.Sessions {
		ps := &st.Sessions[i]
		if err := s.loadSnapshots(ctx, ps); err != nil {
			return st, err
		}
		if err := s.loadMessages(ctx, ps); err != nil {
			return st, err
		}
		if err := s.loadVotes(ctx, ps); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (s *SQLite) loadSnapshots(ctx context.Context, ps *PersistSession) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, title, description, code
		 FROM snapshots WHERE session_id = ? ORDER BY position`, ps.ID)
	if err != nil {
		return fmt.Errorf("sqlite: snapshots: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			snap PersistSnapshot
			ts   string
		)
		if err := rows.Scan(&snap.ID, &ts, &snap.Title, &snap.Description, &snap.Code); err != nil {
			return fmt.Errorf("sqlite: scan snapshot: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return fmt.Errorf("sqlite: snapshot %d timestamp: %w", snap.ID, err)
		}
		snap.Timestamp = t
		ps.Snapshots = append(ps.Snapshots, snap)
	}
	return rows.Err()
}

func (s *SQLite) loadMessages(ctx context.Context, ps *PersistSession) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, text, timestamp, user_name, is_instructor
		 FROM messages WHERE session_id = ? ORDER BY parent_id = '' DESC, position`, ps.ID)
	if err != nil {
		return fmt.Errorf("sqlite: messages: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var (
			m          PersistMessage
			parentID   string
			ts         string
			instructor int
		)
		if err := rows.Scan(&m.ID, &parentID, &m.Text, &ts, &m.UserName, &instructor); err != nil {
			return fmt.Errorf("sqlite: scan message: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return fmt.Errorf("sqlite: message %s timestamp: %w", m.ID, err)
		}
		m.Timestamp = t
		m.IsInstructor = instructor != 0
		if parentID == "" {
			index[m.ID] = len(ps.Questions)
			ps.Questions = append(ps.Questions, m)
			continue
		}
		// 頂層問題先於回覆排序，父節點必定已載入
		i, ok := index[parentID]
		if !ok {
			return fmt.Errorf("sqlite: message %s: parent %s not found", m.ID, parentID)
		}
		ps.Questions[i].Replies = append(ps.Questions[i].Replies, m)
	}
	return rows.Err()
}

func (s *SQLite) loadVotes(ctx context.Context, ps *PersistSession) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT voter, choice FROM votes WHERE session_id = ?`, ps.ID)
	if err != nil {
		return fmt.Errorf("sqlite: votes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var voter, choice string
		if err := rows.Scan(&voter, &choice); err != nil {
			return fmt.Errorf("sqlite: scan vote: %w", err)
		}
		ps.Poll.Votes[voter] = choice
	}
	return rows.Err()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
