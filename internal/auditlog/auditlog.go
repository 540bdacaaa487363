package auditlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region logger
// Logger appends debate lifecycle events to the audit tables. All writes
// are append-only; debates.finished_at is the only field ever updated, so
// a started_at without finished_at marks a stuck or aborted debate.
type Logger struct {
	db *sql.DB
}

// NewLogger wraps an open database handle (see store.DB).
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}
// #endregion logger

// #region lifecycle
// StartDebate records the debate start. Idempotent per debate ID.
func (l *Logger) StartDebate(debateID, caseID string) error {
	_, err := l.db.Exec(
		`INSERT OR IGNORE INTO debates (id, case_id, started_at) VALUES (?, ?, ?)`,
		debateID, caseID, now(),
	)
	if err != nil {
		return fmt.Errorf("start debate: %w", err)
	}
	return nil
}

// EndDebate stamps the debate completion.
func (l *Logger) EndDebate(debateID string) error {
	_, err := l.db.Exec(
		`UPDATE debates SET finished_at = ? WHERE id = ?`, now(), debateID,
	)
	if err != nil {
		return fmt.Errorf("end debate: %w", err)
	}
	return nil
}
// #endregion lifecycle

// #region turns
// LogTurn appends one agent turn.
func (l *Logger) LogTurn(debateID, agent, text string) error {
	_, err := l.db.Exec(
		`INSERT INTO turns (debate_id, agent, text, timestamp) VALUES (?, ?, ?, ?)`,
		debateID, agent, text, now(),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}
// #endregion turns

// #region judgements
// LogJudgement appends the scored verdict for a debate.
func (l *Logger) LogJudgement(debateID string, scores map[string]float64, verdict string, confidence float64) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	_, err = l.db.Exec(
		`INSERT INTO judgements (debate_id, scores_json, verdict, confidence, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		debateID, string(raw), verdict, confidence, now(),
	)
	if err != nil {
		return fmt.Errorf("log judgement: %w", err)
	}
	return nil
}
// #endregion judgements

// #region memory
// LogMemory appends one memory write.
func (l *Logger) LogMemory(debateID, key, value string) error {
	_, err := l.db.Exec(
		`INSERT INTO memory (debate_id, key, value, timestamp) VALUES (?, ?, ?, ?)`,
		debateID, key, value, now(),
	)
	if err != nil {
		return fmt.Errorf("log memory: %w", err)
	}
	return nil
}
// #endregion memory

// #region read-back
// JudgementRecord is one row read back from the judgements table.
type JudgementRecord struct {
	DebateID   string
	Scores     map[string]float64
	Verdict    string
	Confidence float64
	Timestamp  time.Time
}

// RecentJudgements returns the most recent judgement rows.
func (l *Logger) RecentJudgements(limit int) ([]JudgementRecord, error) {
	rows, err := l.db.Query(
		`SELECT debate_id, scores_json, verdict, confidence, timestamp
		 FROM judgements ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list judgements: %w", err)
	}
	defer rows.Close()

	var records []JudgementRecord
	for rows.Next() {
		var rec JudgementRecord
		var scoresJSON, ts string
		if err := rows.Scan(&rec.DebateID, &scoresJSON, &rec.Verdict, &rec.Confidence, &ts); err != nil {
			return nil, fmt.Errorf("scan judgement: %w", err)
		}
		if err := json.Unmarshal([]byte(scoresJSON), &rec.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion read-back

// #region helpers
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
// #endregion helpers
