package daily

import (
	"context"
	"database/sql"
)

// Result is one user's completed daily deal.
type Result struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Pairs  int    `json:"pairs"`
	Turns  int    `json:"turns"`
	Score  int    `json:"score"`
}

// Store persists daily results. One row per user per date.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the user has a result for the given date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a completed daily deal.
// Respects UNIQUE(user_id, date): an existing row wins and the insert is
// silently ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, pairs, turns, score)
		 VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Pairs, r.Turns, r.Score,
	)
	return err
}

// LBRow is one leaderboard entry: fewest turns first.
type LBRow struct {
	UserID string `json:"userId"`
	Turns  int    `json:"turns"`
	Score  int    `json:"score"`
}

// Leaderboard returns the top results for a date, ordered by turns then by
// submission time.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, turns, score
		 FROM daily_results
		 WHERE date=?
		 ORDER BY turns ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Turns, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
