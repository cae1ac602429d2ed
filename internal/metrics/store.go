package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"meal-planner/internal/mealdb"
)

// timestampLayout sorts lexically, so range filters work on the TEXT column.
const timestampLayout = "2006-01-02 15:04:05"

// APICall records metadata for a single catalog API request.
type APICall struct {
	Operation  string
	Target     string
	StatusCode int
	Success    bool
	LatencyMS  int64
	Timestamp  time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ mealdb.Observer = (*Store)(nil)

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, c APICall) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	success := 0
	if c.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_calls (operation, target, status_code, success, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Operation, c.Target, c.StatusCode, success, c.LatencyMS, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert api call: %w", err)
	}
	return nil
}

// OnCallComplete records a finished catalog request. Failures to record are
// logged and otherwise ignored.
func (s *Store) OnCallComplete(ev mealdb.CallEvent) {
	if err := s.Record(context.Background(), MapEvent(ev)); err != nil {
		s.logger.Warn("recording api call", "operation", ev.Operation, "error", err)
	}
}

// MapEvent converts a client call event to an APICall.
func MapEvent(ev mealdb.CallEvent) APICall {
	return APICall{
		Operation:  ev.Operation,
		Target:     ev.Target,
		StatusCode: ev.StatusCode,
		Success:    ev.Err == nil,
		LatencyMS:  ev.Latency.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
}

// DailyUsage represents call totals for a single day.
type DailyUsage struct {
	Date         string
	Calls        int
	Failures     int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timestampLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day,
		        COUNT(*),
		        SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		        CAST(AVG(latency_ms) AS INTEGER)
		   FROM api_calls
		  WHERE timestamp >= ?
		  GROUP BY day
		  ORDER BY day DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Calls, &u.Failures, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily usage: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_calls WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up api calls: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed api calls: %w", err)
	}
	return n, nil
}
