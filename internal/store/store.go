// Package store persists performance records, quiz attempts, and
// trajectories in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/fyrsmithlabs/tutord/internal/trajectory"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence layer. It implements
// performance.Store and trajectory.Store.
type Store struct {
	db *sql.DB
}

var (
	_ performance.Store = (*Store)(nil)
	_ trajectory.Store  = (*Store)(nil)
)

// New opens (creating if needed) the database at dbPath and applies the
// schema. A "~/" prefix expands to the user home directory.
func New(dbPath string) (*Store, error) {
	path, err := expandPath(dbPath)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes all read-modify-write cycles, which
	// the performance upsert contract requires.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS performance_records (
		session_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		questions_attempted INTEGER NOT NULL DEFAULT 0,
		questions_correct INTEGER NOT NULL DEFAULT 0,
		average_score REAL NOT NULL DEFAULT 0,
		score_trend REAL NOT NULL DEFAULT 0,
		hints_requested INTEGER NOT NULL DEFAULT 0,
		time_on_topic_seconds INTEGER NOT NULL DEFAULT 0,
		first_attempt_at DATETIME NOT NULL,
		last_attempt_at DATETIME NOT NULL,
		PRIMARY KEY (session_id, topic)
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		score REAL NOT NULL,
		correct_count INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quiz_attempts_key ON quiz_attempts(session_id, topic, id);

	CREATE TABLE IF NOT EXISTS trajectories (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		state TEXT NOT NULL,
		action TEXT NOT NULL,
		reward REAL NOT NULL DEFAULT 0,
		reward_breakdown TEXT,
		tokens_in INTEGER NOT NULL DEFAULT 0,
		tokens_out INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trajectories_session ON trajectories(session_id);
	CREATE INDEX IF NOT EXISTS idx_trajectories_reward ON trajectories(reward);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetRecord returns the performance record for (sessionID, topic).
func (s *Store) GetRecord(ctx context.Context, sessionID, topic string) (performance.Record, error) {
	return s.scanRecord(s.db.QueryRowContext(ctx,
		`SELECT session_id, topic, questions_attempted, questions_correct, average_score,
		        score_trend, hints_requested, time_on_topic_seconds, first_attempt_at, last_attempt_at
		 FROM performance_records WHERE session_id = ? AND topic = ?`, sessionID, topic))
}

// ListSession returns all performance records for a session.
func (s *Store) ListSession(ctx context.Context, sessionID string) ([]performance.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, topic, questions_attempted, questions_correct, average_score,
		        score_trend, hints_requested, time_on_topic_seconds, first_attempt_at, last_attempt_at
		 FROM performance_records WHERE session_id = ? ORDER BY topic`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []performance.Record
	for rows.Next() {
		r, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpdateRecord applies fn transactionally for the (sessionID, topic) key.
func (s *Store) UpdateRecord(ctx context.Context, sessionID, topic string, fn func(existing performance.Record, found bool) performance.Record) (performance.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return performance.Record{}, err
	}
	defer tx.Rollback()

	existing, err := s.scanRecord(tx.QueryRowContext(ctx,
		`SELECT session_id, topic, questions_attempted, questions_correct, average_score,
		        score_trend, hints_requested, time_on_topic_seconds, first_attempt_at, last_attempt_at
		 FROM performance_records WHERE session_id = ? AND topic = ?`, sessionID, topic))
	found := err == nil
	if err != nil && err != performance.ErrNotFound {
		return performance.Record{}, err
	}

	updated := fn(existing, found)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO performance_records
		   (session_id, topic, questions_attempted, questions_correct, average_score,
		    score_trend, hints_requested, time_on_topic_seconds, first_attempt_at, last_attempt_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, topic) DO UPDATE SET
		   questions_attempted = excluded.questions_attempted,
		   questions_correct = excluded.questions_correct,
		   average_score = excluded.average_score,
		   score_trend = excluded.score_trend,
		   hints_requested = excluded.hints_requested,
		   time_on_topic_seconds = excluded.time_on_topic_seconds,
		   last_attempt_at = excluded.last_attempt_at`,
		updated.SessionID, updated.Topic, updated.QuestionsAttempted, updated.QuestionsCorrect,
		updated.AverageScore, updated.ScoreTrend, updated.HintsRequested, updated.TimeOnTopicSeconds,
		updated.FirstAttemptAt, updated.LastAttemptAt,
	)
	if err != nil {
		return performance.Record{}, err
	}
	return updated, tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRecord(row rowScanner) (performance.Record, error) {
	var r performance.Record
	err := row.Scan(&r.SessionID, &r.Topic, &r.QuestionsAttempted, &r.QuestionsCorrect,
		&r.AverageScore, &r.ScoreTrend, &r.HintsRequested, &r.TimeOnTopicSeconds,
		&r.FirstAttemptAt, &r.LastAttemptAt)
	if err == sql.ErrNoRows {
		return performance.Record{}, performance.ErrNotFound
	}
	return r, err
}

// RecordQuizAttempt appends a graded quiz outcome.
func (s *Store) RecordQuizAttempt(ctx context.Context, sessionID, topic string, score float64, correctCount, totalQuestions int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (session_id, topic, score, correct_count, total_questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, topic, score, correctCount, totalQuestions, time.Now(),
	)
	return err
}

// PreviousQuizScore returns the score of the most recent quiz attempt
// for (sessionID, topic). found is false when no attempt exists.
func (s *Store) PreviousQuizScore(ctx context.Context, sessionID, topic string) (score float64, found bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT score FROM quiz_attempts WHERE session_id = ? AND topic = ? ORDER BY id DESC LIMIT 1`,
		sessionID, topic,
	).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

// InsertTrajectory appends a trajectory record.
func (s *Store) InsertTrajectory(ctx context.Context, t trajectory.Trajectory) error {
	stateJSON, err := json.Marshal(t.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	actionJSON, err := json.Marshal(t.Action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	var breakdownJSON any
	if t.RewardBreakdown != nil {
		b, err := json.Marshal(t.RewardBreakdown)
		if err != nil {
			return fmt.Errorf("marshal reward breakdown: %w", err)
		}
		breakdownJSON = string(b)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trajectories (id, session_id, state, action, reward, reward_breakdown, tokens_in, tokens_out, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, string(stateJSON), string(actionJSON), t.Reward, breakdownJSON,
		t.TokensIn, t.TokensOut, t.CreatedAt,
	)
	return err
}

// UpdateTrajectoryReward sets the reward fields of an existing trajectory.
func (s *Store) UpdateTrajectoryReward(ctx context.Context, id string, rewardValue float64, breakdown reward.Breakdown) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshal reward breakdown: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE trajectories SET reward = ?, reward_breakdown = ? WHERE id = ?`,
		rewardValue, string(breakdownJSON), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return trajectory.ErrNotFound
	}
	return nil
}

// ListSessionTrajectories returns a session's trajectories, oldest first.
func (s *Store) ListSessionTrajectories(ctx context.Context, sessionID string) ([]trajectory.Trajectory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, state, action, reward, reward_breakdown, tokens_in, tokens_out, created_at
		 FROM trajectories WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrajectories(rows)
}

// ListTrajectoriesForExport returns trajectories with reward >= minReward,
// newest first, capped at limit.
func (s *Store) ListTrajectoriesForExport(ctx context.Context, minReward float64, limit int) ([]trajectory.Trajectory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, state, action, reward, reward_breakdown, tokens_in, tokens_out, created_at
		 FROM trajectories WHERE reward >= ? ORDER BY rowid DESC LIMIT ?`, minReward, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrajectories(rows)
}

func scanTrajectories(rows *sql.Rows) ([]trajectory.Trajectory, error) {
	var out []trajectory.Trajectory
	for rows.Next() {
		var (
			t             trajectory.Trajectory
			stateJSON     string
			actionJSON    string
			breakdownJSON sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &stateJSON, &actionJSON, &t.Reward,
			&breakdownJSON, &t.TokensIn, &t.TokensOut, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stateJSON), &t.State); err != nil {
			return nil, fmt.Errorf("unmarshal state for %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(actionJSON), &t.Action); err != nil {
			return nil, fmt.Errorf("unmarshal action for %s: %w", t.ID, err)
		}
		if breakdownJSON.Valid {
			var b reward.Breakdown
			if err := json.Unmarshal([]byte(breakdownJSON.String), &b); err != nil {
				return nil, fmt.Errorf("unmarshal reward breakdown for %s: %w", t.ID, err)
			}
			t.RewardBreakdown = &b
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
