package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/database"
)

// Store persists reports in SQLite.
type Store struct {
	db  *database.DB
	now func() time.Time
}

// NewStore returns a Store backed by db. Migrations must already be applied.
func NewStore(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Save upserts every day of the report into sleep_daily and records the run
// in sleep_runs, all in one transaction. Re-running over an overlapping
// window replaces the totals of the overlapping days.
func (s *Store) Save(ctx context.Context, r Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	updatedAt := s.now().UTC().Format(time.RFC3339)

	for _, d := range r.Daily {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sleep_daily (date, sleep_seconds, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				sleep_seconds = excluded.sleep_seconds,
				updated_at = excluded.updated_at`,
			d.Date, d.SleepSeconds, updatedAt,
		); err != nil {
			return fmt.Errorf("saving day %s: %w", d.Date, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sleep_runs (window_start, window_end, days, threshold, total_seconds, ratio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339),
		r.Days, r.Threshold, r.TotalSeconds, r.Ratio(), updatedAt,
	); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing report: %w", err)
	}
	return nil
}

// Daily returns stored totals for dates in [from, to], oldest first.
// Dates are YYYY-MM-DD strings.
func (s *Store) Daily(ctx context.Context, from, to string) ([]Day, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date, sleep_seconds FROM sleep_daily WHERE date >= ? AND date <= ? ORDER BY date",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sleep_daily: %w", err)
	}
	defer rows.Close()

	var days []Day
	for rows.Next() {
		var d Day
		if err := rows.Scan(&d.Date, &d.SleepSeconds); err != nil {
			return nil, fmt.Errorf("scanning sleep_daily row: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sleep_daily: %w", err)
	}
	return days, nil
}
