package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/internal/transfer"
	"github.com/postqueue/postqueue/pkg/crypto"
)

// AccountService is the registry of connected social accounts. Tokens are
// encrypted before they reach the repository and redacted on the way out;
// DispatchCredentials is the only decrypting path and is never routed.
type AccountService interface {
	Connect(ctx context.Context, userID int64, req *transfer.ConnectAccount) (*models.SocialAccount, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	DispatchCredentials(ctx context.Context, accountID int64) (*transfer.Credentials, error)
}

type accountService struct {
	sa     repository.SocialAccountRepository
	cipher *crypto.Cipher
}

func NewAccountService(sa repository.SocialAccountRepository, cipher *crypto.Cipher) AccountService {
	return &accountService{
		sa:     sa,
		cipher: cipher,
	}
}

func (s *accountService) Connect(ctx context.Context, userID int64, req *transfer.ConnectAccount) (*models.SocialAccount, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}
	if req == nil || req.Platform == "" {
		return nil, fmt.Errorf("%w: platform is missing", apperror.ErrInvalidArgument)
	}
	if req.AccountID == "" {
		return nil, fmt.Errorf("%w: external account id is missing", apperror.ErrInvalidArgument)
	}

	encryptedAccess, err := s.cipher.Encrypt(req.AccessToken)
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}
	encryptedRefresh, err := s.cipher.Encrypt(req.RefreshToken)
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("encrypting refresh token: %w", err)
	}

	tokenExpiresAt := req.TokenExpiresAt
	if tokenExpiresAt.IsZero() && req.ExpiresIn > 0 {
		tokenExpiresAt = GetExpiresAt(req.ExpiresIn)
	}

	account := &models.SocialAccount{
		UserID:         userID,
		Platform:       req.Platform,
		AccountID:      req.AccountID,
		AccountName:    req.AccountName,
		ProfilePicture: req.ProfilePicture,
		FollowersCount: req.FollowersCount,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: tokenExpiresAt,
		AccountStatus:  models.AccountStatusConnected,
	}

	saved, err := s.sa.Upsert(ctx, account)
	if err != nil {
		return nil, storageError(err)
	}

	saved.Redact()
	return saved, nil
}

// Disconnect is idempotent: a second call finds the row already
// disconnected and succeeds without error.
func (s *accountService) Disconnect(ctx context.Context, userID, accountID int64) error {
	if userID == 0 || accountID == 0 {
		return fmt.Errorf("%w: account id is missing", apperror.ErrInvalidArgument)
	}

	affected, err := s.sa.Disconnect(ctx, accountID, userID)
	if err != nil {
		return storageError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %d", apperror.ErrNotFound, accountID)
	}

	return nil
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}

	for _, account := range accounts {
		account.Redact()
	}
	return accounts, nil
}

// DispatchCredentials decrypts the stored token pair for the dispatcher.
// Only connected accounts are dispatchable.
func (s *accountService) DispatchCredentials(ctx context.Context, accountID int64) (*transfer.Credentials, error) {
	account, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError(err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %d", apperror.ErrNotFound, accountID)
	}
	if account.AccountStatus != models.AccountStatusConnected {
		return nil, fmt.Errorf("%w: account %d is %s", apperror.ErrInvalidState, accountID, account.AccountStatus)
	}

	accessToken, err := s.cipher.Decrypt(account.AccessToken)
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}
	refreshToken, err := s.cipher.Decrypt(account.RefreshToken)
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("decrypting refresh token: %w", err)
	}

	return &transfer.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
