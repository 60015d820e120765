package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/internal/transfer"
)

// PostService owns the scheduled-post lifecycle:
// scheduled -> published | failed | cancelled, all three terminal.
// Transitions run as conditional updates in the repository, never as
// read-then-write.
type PostService interface {
	Schedule(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error)
	Update(ctx context.Context, userID, postID int64, upd *transfer.PostUpdate) (*models.Post, error)
	Cancel(ctx context.Context, userID, postID int64) (*models.Post, error)
	MarkPublished(ctx context.Context, userID, postID int64) (*models.Post, error)
	MarkFailed(ctx context.Context, userID, postID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
	PostInfo(ctx context.Context, userID, postID int64) (*models.Post, []*models.PostMedia, error)
	List(ctx context.Context, userID int64, filter *transfer.PostFilter, limit, offset int) ([]*models.Post, int64, error)
}

type postService struct {
	db *sql.DB
	pr repository.PostRepository
	sa repository.SocialAccountRepository
	ma repository.MediaAssetRepository
	pm repository.PostMediaRepository
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	sa repository.SocialAccountRepository,
	ma repository.MediaAssetRepository,
	pm repository.PostMediaRepository) PostService {
	return &postService{
		db: db,
		pr: pr,
		sa: sa,
		ma: ma,
		pm: pm,
	}
}

func (s *postService) Schedule(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error) {
	if userID == 0 {
		return nil, 0, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}
	if pc == nil || pc.AccountID == 0 {
		return nil, 0, fmt.Errorf("%w: account id is missing", apperror.ErrInvalidArgument)
	}
	if pc.Content == "" {
		return nil, 0, fmt.Errorf("%w: content is empty", apperror.ErrInvalidArgument)
	}
	if !pc.ScheduledFor.After(time.Now()) {
		return nil, 0, fmt.Errorf("%w: scheduled_for must be in the future", apperror.ErrInvalidArgument)
	}

	account, err := s.sa.GetForOwner(ctx, pc.AccountID, userID)
	if err != nil {
		return nil, 0, storageError(err)
	}
	if account == nil {
		return nil, 0, fmt.Errorf("%w: account %d", apperror.ErrNotFound, pc.AccountID)
	}
	if account.AccountStatus != models.AccountStatusConnected {
		return nil, 0, fmt.Errorf("%w: account %d is %s", apperror.ErrInvalidState, pc.AccountID, account.AccountStatus)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, 0, storageError(err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:         userID,
		AccountID:      pc.AccountID,
		Content:        pc.Content,
		Hashtags:       normalizeHashtags(pc.Hashtags),
		ScheduledFor:   pc.ScheduledFor,
		Status:         models.PostStatusScheduled,
		BrandProfileID: pc.BrandProfileID,
		CreatedFrom:    pc.CreatedFrom,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		err = storageError(err)
		return nil, 0, err
	}
	post.ID = postID

	if err = s.attachMedia(ctx, tx, userID, postID, pc.MediaAssetIDs); err != nil {
		return nil, 0, err
	}

	if err = tx.Commit(); err != nil {
		err = storageError(err)
		return nil, 0, err
	}

	delay := time.Until(post.ScheduledFor)
	if delay < 0 {
		delay = 0
	}

	return &post, delay, nil
}

func (s *postService) attachMedia(ctx context.Context, tx *sql.Tx, userID, postID int64, assetIDs []int64) error {
	for i, assetID := range assetIDs {
		asset, err := s.ma.GetForOwner(ctx, assetID, userID)
		if err != nil {
			return storageError(err)
		}
		if asset == nil {
			return fmt.Errorf("%w: media asset %d", apperror.ErrNotFound, assetID)
		}

		pm := models.PostMedia{
			PostID:       postID,
			AssetID:      assetID,
			DisplayOrder: i,
		}
		if err := s.pm.Create(ctx, tx, &pm); err != nil {
			return storageError(err)
		}
	}
	return nil
}

func (s *postService) Update(ctx context.Context, userID, postID int64, upd *transfer.PostUpdate) (*models.Post, error) {
	if userID == 0 || postID == 0 {
		return nil, fmt.Errorf("%w: post id is missing", apperror.ErrInvalidArgument)
	}
	if upd == nil {
		return nil, fmt.Errorf("%w: no fields to update", apperror.ErrInvalidArgument)
	}
	if upd.Content != nil && *upd.Content == "" {
		return nil, fmt.Errorf("%w: content is empty", apperror.ErrInvalidArgument)
	}
	if upd.ScheduledFor != nil && !upd.ScheduledFor.After(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled_for must be in the future", apperror.ErrInvalidArgument)
	}
	if upd.Hashtags != nil {
		upd.Hashtags = normalizeHashtags(upd.Hashtags)
	}

	affected, err := s.pr.Update(ctx, postID, userID, upd)
	if err != nil {
		return nil, storageError(err)
	}
	if affected == 0 {
		return nil, s.rejectionFor(ctx, userID, postID)
	}

	post, err := s.pr.GetForOwner(ctx, postID, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", apperror.ErrNotFound, postID)
	}
	return post, nil
}

func (s *postService) Cancel(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return s.transition(ctx, userID, postID, models.PostStatusCancelled)
}

func (s *postService) MarkPublished(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return s.transition(ctx, userID, postID, models.PostStatusPublished)
}

func (s *postService) MarkFailed(ctx context.Context, userID, postID int64) (*models.Post, error) {
	return s.transition(ctx, userID, postID, models.PostStatusFailed)
}

// transition moves a post out of scheduled. A post already in a terminal
// state makes the conditional update miss, which surfaces as InvalidState:
// double-marking is rejected, not silently absorbed, so double-dispatch
// bugs stay visible to callers.
func (s *postService) transition(ctx context.Context, userID, postID int64, to string) (*models.Post, error) {
	if userID == 0 || postID == 0 {
		return nil, fmt.Errorf("%w: post id is missing", apperror.ErrInvalidArgument)
	}

	affected, err := s.pr.UpdateStatus(ctx, postID, userID, models.PostStatusScheduled, to)
	if err != nil {
		return nil, storageError(err)
	}
	if affected == 0 {
		return nil, s.rejectionFor(ctx, userID, postID)
	}

	post, err := s.pr.GetForOwner(ctx, postID, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", apperror.ErrNotFound, postID)
	}
	return post, nil
}

// rejectionFor explains a guarded update that matched no rows: the post is
// either gone (or not the caller's, indistinguishable on purpose) or it is
// no longer in the scheduled state.
func (s *postService) rejectionFor(ctx context.Context, userID, postID int64) error {
	post, err := s.pr.GetForOwner(ctx, postID, userID)
	if err != nil {
		return storageError(err)
	}
	if post == nil {
		return fmt.Errorf("%w: post %d", apperror.ErrNotFound, postID)
	}
	return fmt.Errorf("%w: post %d is %s", apperror.ErrInvalidState, postID, post.Status)
}

// Remove is allowed from any state, terminal ones included.
func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		return fmt.Errorf("%w: post id is missing", apperror.ErrInvalidArgument)
	}

	affected, err := s.pr.Remove(ctx, postID, userID)
	if err != nil {
		return storageError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: post %d", apperror.ErrNotFound, postID)
	}

	if err := s.pm.RemoveByPostID(ctx, postID); err != nil {
		// media join rows are also covered by the FK cascade
		slog.Info(err.Error())
	}

	return nil
}

func (s *postService) PostInfo(ctx context.Context, userID, postID int64) (*models.Post, []*models.PostMedia, error) {
	if userID == 0 || postID == 0 {
		return nil, nil, fmt.Errorf("%w: post id is missing", apperror.ErrInvalidArgument)
	}

	post, err := s.pr.GetForOwner(ctx, postID, userID)
	if err != nil {
		return nil, nil, storageError(err)
	}
	if post == nil {
		return nil, nil, fmt.Errorf("%w: post %d", apperror.ErrNotFound, postID)
	}

	media, err := s.pm.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, storageError(err)
	}

	return post, media, nil
}

func (s *postService) List(ctx context.Context, userID int64, filter *transfer.PostFilter, limit, offset int) ([]*models.Post, int64, error) {
	if userID == 0 {
		return nil, 0, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}
	if filter != nil && filter.Status != nil {
		if *filter.Status != models.PostStatusScheduled && !models.TerminalStatus(*filter.Status) {
			return nil, 0, fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidArgument, *filter.Status)
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	posts, total, err := s.pr.List(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, 0, storageError(err)
	}
	return posts, total, nil
}

// normalizeHashtags treats hashtags as a set: duplicates collapse, first
// occurrence keeps its position.
func normalizeHashtags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
