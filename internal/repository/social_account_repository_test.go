package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postqueue/postqueue/internal/models"
)

func newSocialAccountMock(t *testing.T) (SocialAccountRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSocialAccountRepository(db), mock
}

func socialAccountRows(sa *models.SocialAccount) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "platform", "account_id", "account_name", "profile_picture_url",
		"followers_count", "access_token", "refresh_token", "token_expires_at", "account_status",
		"last_sync_at", "created_at", "updated_at",
	}).AddRow(sa.ID, sa.UserID, sa.Platform, sa.AccountID, sa.AccountName, sa.ProfilePicture,
		sa.FollowersCount, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt, sa.AccountStatus,
		sa.LastSyncAt, sa.CreatedAt, sa.UpdatedAt)
}

func TestSocialAccountRepository_UpsertReturnsSavedRow(t *testing.T) {
	repo, mock := newSocialAccountMock(t)
	now := time.Now()

	input := &models.SocialAccount{
		UserID:         7,
		Platform:       "twitter",
		AccountID:      "ext-1",
		AccountName:    "Demo",
		FollowersCount: 100,
		AccessToken:    "enc-access",
		RefreshToken:   "enc-refresh",
		TokenExpiresAt: now.Add(24 * time.Hour),
		AccountStatus:  models.AccountStatusConnected,
	}
	saved := *input
	saved.ID = 42
	saved.LastSyncAt = now
	saved.CreatedAt = now
	saved.UpdatedAt = now

	mock.ExpectQuery("INSERT INTO social_accounts").
		WithArgs(input.UserID, input.Platform, input.AccountID, input.AccountName,
			input.ProfilePicture, input.FollowersCount, input.AccessToken, input.RefreshToken,
			input.TokenExpiresAt, input.AccountStatus).
		WillReturnRows(socialAccountRows(&saved))

	got, err := repo.Upsert(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "enc-access", got.AccessToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_GetForOwnerNoRows(t *testing.T) {
	repo, mock := newSocialAccountMock(t)

	mock.ExpectQuery("SELECT .+ FROM social_accounts WHERE id = .+ AND user_id = .+").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.GetForOwner(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSocialAccountRepository_DisconnectReportsMatches(t *testing.T) {
	repo, mock := newSocialAccountMock(t)

	mock.ExpectExec("UPDATE social_accounts").
		WithArgs(int64(42), int64(7), models.AccountStatusDisconnected).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Disconnect(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSocialAccountRepository_DisconnectMissesForeignRow(t *testing.T) {
	repo, mock := newSocialAccountMock(t)

	mock.ExpectExec("UPDATE social_accounts").
		WithArgs(int64(42), int64(8), models.AccountStatusDisconnected).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Disconnect(context.Background(), 42, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestSocialAccountRepository_ExpireTokens(t *testing.T) {
	repo, mock := newSocialAccountMock(t)
	cutoff := time.Now()

	mock.ExpectExec("UPDATE social_accounts").
		WithArgs(cutoff, models.AccountStatusDisconnected, models.AccountStatusConnected).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.ExpireTokens(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestSocialAccountRepository_ListByUserID(t *testing.T) {
	repo, mock := newSocialAccountMock(t)
	now := time.Now()

	rows := socialAccountRows(&models.SocialAccount{
		ID: 1, UserID: 7, Platform: "twitter", AccountID: "ext-1",
		AccountStatus: models.AccountStatusConnected,
		TokenExpiresAt: now, LastSyncAt: now, CreatedAt: now, UpdatedAt: now,
	}).AddRow(int64(2), int64(7), "linkedin", "ext-2", "", "", int64(0), "", "",
		now, models.AccountStatusDisconnected, now, now, now)

	mock.ExpectQuery("SELECT .+ FROM social_accounts WHERE user_id = .+ ORDER BY id").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	accounts, err := repo.ListByUserID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "twitter", accounts[0].Platform)
	assert.Equal(t, "linkedin", accounts[1].Platform)
}
