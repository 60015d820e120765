package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type RateLimitRepository interface {
	Consume(ctx context.Context, userID int64, platform, actionType string, windowStart time.Time, maxRequests int) (int, bool, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type rateLimitRepository struct {
	db *sql.DB
}

func NewRateLimitRepository(db *sql.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Consume creates the window on first use and increments it otherwise, in
// one statement. The WHERE on the conflict branch keeps the increment
// conditional: a full window returns no row and the count stays untouched,
// so two concurrent callers can never both slip past the ceiling.
func (r *rateLimitRepository) Consume(ctx context.Context, userID int64, platform, actionType string, windowStart time.Time, maxRequests int) (int, bool, error) {
	query := `
		INSERT INTO rate_limit_windows (user_id, platform, action_type, window_start, requests_count, max_requests)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (user_id, platform, action_type, window_start) DO UPDATE SET
			requests_count = rate_limit_windows.requests_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE rate_limit_windows.requests_count < rate_limit_windows.max_requests
		RETURNING requests_count, max_requests
	`

	var count, max int
	err := r.db.QueryRowContext(ctx, query, userID, platform, actionType, windowStart, maxRequests).Scan(&count, &max)
	if err != nil {
		if err == sql.ErrNoRows {
			// Window exists and is full; the attempt consumed nothing.
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}

	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true, nil
}

func (r *rateLimitRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM rate_limit_windows WHERE window_start < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}
