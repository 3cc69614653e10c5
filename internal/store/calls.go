// ABOUTME: Call ledger records and per-command statistics
// ABOUTME: Implements packs.Recorder so the router can log every dispatch

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/course-gateway/internal/packs"
)

// OutcomeOK is stored for calls that returned without error.
const OutcomeOK = "ok"

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Call is one recorded dispatch.
type Call struct {
	ID        string
	RequestID string
	SessionID string
	Command   string
	Outcome   string
	Duration  time.Duration
	CreatedAt time.Time
}

// CommandStats aggregates calls to one command.
type CommandStats struct {
	Command     string
	Calls       int64
	Failures    int64
	AvgDuration time.Duration
	LastCalled  time.Time
}

// CallFilter narrows ledger queries. Nil fields are ignored.
type CallFilter struct {
	Command *string
	Since   *time.Time
	Until   *time.Time
}

var _ packs.Recorder = (*SQLiteStore)(nil)

// RecordCall implements packs.Recorder.
func (s *SQLiteStore) RecordCall(ctx context.Context, rec packs.CallRecord) error {
	outcome := string(rec.Kind)
	if outcome == "" {
		outcome = OutcomeOK
	}
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}

	query := `
		INSERT INTO calls (id, request_id, session_id, command, outcome, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(),
		rec.RequestID,
		rec.SessionID,
		rec.Command,
		outcome,
		rec.Duration.Milliseconds(),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting call: %w", err)
	}

	s.logger.Debug("recorded call",
		"command", rec.Command,
		"request_id", rec.RequestID,
		"outcome", outcome,
		"duration_ms", rec.Duration.Milliseconds(),
	)
	return nil
}

func (f CallFilter) where() (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if f.Command != nil {
		clause += " AND command = ?"
		args = append(args, *f.Command)
	}
	if f.Since != nil {
		clause += " AND created_at >= ?"
		args = append(args, f.Since.UTC().Format(timeLayout))
	}
	if f.Until != nil {
		clause += " AND created_at < ?"
		args = append(args, f.Until.UTC().Format(timeLayout))
	}
	return clause, args
}

// RecentCalls returns up to limit calls, newest first.
func (s *SQLiteStore) RecentCalls(ctx context.Context, filter CallFilter, limit int) ([]Call, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := filter.where()
	query := `
		SELECT id, request_id, session_id, command, outcome, duration_ms, created_at
		FROM calls` + where + `
		ORDER BY created_at DESC
		LIMIT ?
	`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var calls []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating call rows: %w", err)
	}
	return calls, nil
}

// UsageStats returns per-command totals, most called first.
func (s *SQLiteStore) UsageStats(ctx context.Context, filter CallFilter) ([]CommandStats, error) {
	where, args := filter.where()
	query := `
		SELECT
			command,
			COUNT(*) AS calls,
			COALESCE(SUM(CASE WHEN outcome != 'ok' THEN 1 ELSE 0 END), 0) AS failures,
			COALESCE(AVG(duration_ms), 0) AS avg_ms,
			MAX(created_at) AS last_called
		FROM calls` + where + `
		GROUP BY command
		ORDER BY calls DESC, command ASC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying usage stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []CommandStats
	for rows.Next() {
		var st CommandStats
		var avgMS float64
		var last string
		if err := rows.Scan(&st.Command, &st.Calls, &st.Failures, &avgMS, &last); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		st.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
		st.LastCalled, err = time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return nil, fmt.Errorf("parsing last_called: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage rows: %w", err)
	}
	return stats, nil
}

func scanCall(rows *sql.Rows) (Call, error) {
	var c Call
	var durationMS int64
	var createdAt string

	err := rows.Scan(&c.ID, &c.RequestID, &c.SessionID, &c.Command, &c.Outcome, &durationMS, &createdAt)
	if err != nil {
		return Call{}, fmt.Errorf("scanning call row: %w", err)
	}
	c.Duration = time.Duration(durationMS) * time.Millisecond
	c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Call{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return c, nil
}
