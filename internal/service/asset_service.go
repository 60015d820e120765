package service

import (
	"context"
	"fmt"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/pkg/utils"
)

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {}, "gif": {},
}

// AssetService stores uploaded media in object storage and records the
// asset row posts reference.
type AssetService interface {
	Upload(ctx context.Context, userID int64, file []byte) (*models.MediaAsset, error)
	Remove(ctx context.Context, userID, assetID int64) error
}

type assetService struct {
	ma repository.MediaAssetRepository
	r2 *R2Service
}

func NewAssetService(ma repository.MediaAssetRepository, r2 *R2Service) AssetService {
	return &assetService{
		ma: ma,
		r2: r2,
	}
}

func (s *assetService) Upload(ctx context.Context, userID int64, file []byte) (*models.MediaAsset, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}
	if len(file) == 0 {
		return nil, fmt.Errorf("%w: file is empty", apperror.ErrInvalidArgument)
	}

	fileType, err := filetype.Match(file)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("%w: unrecognized file type", apperror.ErrInvalidArgument)
	}
	if _, ok := allowedMediaTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("%w: file type %s is not allowed", apperror.ErrInvalidArgument, fileType.Extension)
	}

	key, err := utils.GenerateRandomKey(21)
	if err != nil {
		return nil, fmt.Errorf("generating asset key: %w", err)
	}

	if err := s.r2.UploadToR2(ctx, key, file, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("uploading asset: %w", err)
	}

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(file)),
		FileURL:  s.r2.PublicURL(key),
	}

	assetID, err := s.ma.Create(ctx, nil, asset)
	if err != nil {
		return nil, storageError(err)
	}
	asset.ID = assetID

	return asset, nil
}

func (s *assetService) Remove(ctx context.Context, userID, assetID int64) error {
	if userID == 0 || assetID == 0 {
		return fmt.Errorf("%w: asset id is missing", apperror.ErrInvalidArgument)
	}

	affected, err := s.ma.Remove(ctx, assetID, userID)
	if err != nil {
		return storageError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: media asset %d", apperror.ErrNotFound, assetID)
	}
	return nil
}
