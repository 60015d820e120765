package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postqueue/postqueue/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetForOwner(ctx context.Context, id, userID int64) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Disconnect(ctx context.Context, id, userID int64) (int64, error)
	ExpireTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, platform, account_id, account_name, profile_picture_url,
		followers_count, access_token, refresh_token, token_expires_at, account_status,
		last_sync_at, created_at, updated_at`

// Upsert keys on (user_id, platform, account_id): reconnecting the same
// external account refreshes its credentials and metadata in place instead
// of inserting a second row.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (*models.SocialAccount, error) {
	query := `
		INSERT INTO social_accounts(
			user_id,
			platform,
			account_id,
			account_name,
			profile_picture_url,
			followers_count,
			access_token,
			refresh_token,
			token_expires_at,
			account_status,
			last_sync_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, platform, account_id) DO UPDATE SET
			account_name = EXCLUDED.account_name,
			profile_picture_url = EXCLUDED.profile_picture_url,
			followers_count = EXCLUDED.followers_count,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			account_status = EXCLUDED.account_status,
			last_sync_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + socialAccountColumns

	row := r.db.QueryRowContext(ctx, query,
		sa.UserID,
		sa.Platform,
		sa.AccountID,
		sa.AccountName,
		sa.ProfilePicture,
		sa.FollowersCount,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
		sa.AccountStatus,
	)

	saved, err := scanSocialAccount(row)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return saved, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	sa, err := scanSocialAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

// GetForOwner filters by owner in the same query that fetches the row, so
// "absent" and "not yours" are indistinguishable to the caller.
func (r *socialAccountRepository) GetForOwner(ctx context.Context, id, userID int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	sa, err := scanSocialAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

// Disconnect clears both secret columns in the same statement that flips the
// status, so a non-connected row never keeps credential residue. Reports the
// number of matched rows; disconnecting an already-disconnected account
// still matches and is a no-op.
func (r *socialAccountRepository) Disconnect(ctx context.Context, id, userID int64) (int64, error) {
	query := `
		UPDATE social_accounts
		SET account_status = $3,
			access_token = '',
			refresh_token = '',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID, models.AccountStatusDisconnected)
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

// ExpireTokens disconnects connected accounts whose token expiry has lapsed.
// Rows without a known expiry (the zero timestamp) are left alone.
func (r *socialAccountRepository) ExpireTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE social_accounts
		SET account_status = $2,
			access_token = '',
			refresh_token = '',
			updated_at = CURRENT_TIMESTAMP
		WHERE account_status = $3
			AND token_expires_at > to_timestamp(0)
			AND token_expires_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff, models.AccountStatusDisconnected, models.AccountStatusConnected)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSocialAccount(row rowScanner) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountID, &sa.AccountName,
		&sa.ProfilePicture, &sa.FollowersCount, &sa.AccessToken, &sa.RefreshToken,
		&sa.TokenExpiresAt, &sa.AccountStatus, &sa.LastSyncAt, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}
