package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/pkg/utils"
)

const maxApiKeysPerUser = 5

type ApiKeyService interface {
	Create(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) error {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return storageError(err)
	}

	if len(keys) >= maxApiKeysPerUser {
		return fmt.Errorf("%w: at most %d API keys per user", apperror.ErrInvalidState, maxApiKeysPerUser)
	}

	key, err := utils.GenerateRandomKey(32)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("generating API key: %w", err)
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		ApiKey: key,
	}

	if _, err = s.k.Create(ctx, apiKey); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, isExist, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, storageError(err)
	}

	if !isExist {
		return 0, fmt.Errorf("%w: api key", apperror.ErrNotFound)
	}

	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	apiKeys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return apiKeys, nil
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	if userID == 0 || keyID == 0 {
		return fmt.Errorf("%w: key id is missing", apperror.ErrInvalidArgument)
	}

	affected, err := s.k.Remove(ctx, keyID, userID)
	if err != nil {
		return storageError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: api key %d", apperror.ErrNotFound, keyID)
	}
	return nil
}
