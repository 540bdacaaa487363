package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS fragments (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	text        TEXT NOT NULL,
	embedding   BLOB NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE (source, text)
);

CREATE TABLE IF NOT EXISTS queries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	question    TEXT NOT NULL,
	timestamp   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evidence_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id    INTEGER NOT NULL,
	fragment_id INTEGER NOT NULL,
	score       REAL NOT NULL,
	timestamp   TEXT NOT NULL,
	FOREIGN KEY (query_id) REFERENCES queries(id),
	FOREIGN KEY (fragment_id) REFERENCES fragments(id)
);

CREATE TABLE IF NOT EXISTS debates (
	id          TEXT PRIMARY KEY,
	case_id     TEXT,
	started_at  TEXT,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS turns (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	debate_id   TEXT NOT NULL,
	agent       TEXT NOT NULL,
	text        TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	FOREIGN KEY (debate_id) REFERENCES debates(id)
);

CREATE TABLE IF NOT EXISTS judgements (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	debate_id   TEXT NOT NULL,
	scores_json TEXT NOT NULL,
	verdict     TEXT NOT NULL,
	confidence  REAL NOT NULL,
	timestamp   TEXT NOT NULL,
	FOREIGN KEY (debate_id) REFERENCES debates(id)
);

CREATE TABLE IF NOT EXISTS memory (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	debate_id   TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	FOREIGN KEY (debate_id) REFERENCES debates(id)
);
`
// #endregion schema

// #region store-struct
// Store manages the courtroom corpus and audit tables in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. auditlog).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region insert-fragment
// InsertFragment stores a fragment, suppressing duplicates on (source, text).
// The UNIQUE index makes the check-then-insert atomic under concurrent writers.
// Returns the fragment ID and whether a new row was created.
func (s *Store) InsertFragment(source, text string, embedding []float32) (int64, bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO fragments (source, text, embedding, created_at)
		 VALUES (?, ?, ?, ?)`,
		source, text, encodeVector(embedding), now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert fragment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("last insert id: %w", err)
		}
		return id, true, nil
	}

	// Duplicate: look up the existing row.
	var id int64
	err = s.db.QueryRow(
		`SELECT id FROM fragments WHERE source = ? AND text = ?`, source, text,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("lookup fragment: %w", err)
	}
	return id, false, nil
}
// #endregion insert-fragment

// #region all-fragments
// AllFragments returns every stored fragment in insertion order.
func (s *Store) AllFragments() ([]Fragment, error) {
	rows, err := s.db.Query(`SELECT id, source, text, embedding FROM fragments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	defer rows.Close()

	var frags []Fragment
	for rows.Next() {
		var f Fragment
		var blob []byte
		if err := rows.Scan(&f.ID, &f.Source, &f.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		f.Embedding = decodeVector(blob)
		frags = append(frags, f)
	}
	return frags, rows.Err()
}
// #endregion all-fragments

// #region query-audit
// RecordQuery appends a retrieval query row and returns its ID.
func (s *Store) RecordQuery(question string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO queries (question, timestamp) VALUES (?, ?)`,
		question, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("query id: %w", err)
	}
	return id, nil
}

// LogEvidence appends one (query, fragment, score) audit row.
func (s *Store) LogEvidence(queryID, fragmentID int64, score float64) error {
	_, err := s.db.Exec(
		`INSERT INTO evidence_logs (query_id, fragment_id, score, timestamp)
		 VALUES (?, ?, ?, ?)`,
		queryID, fragmentID, score, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log evidence: %w", err)
	}
	return nil
}
// #endregion query-audit

// #region vector-encoding
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
// #endregion vector-encoding
