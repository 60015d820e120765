package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/postqueue/postqueue/internal/models"
	"github.com/postqueue/postqueue/internal/transfer"
)

// In-memory repositories for service tests. They mirror the conditional
// semantics of the SQL statements (owner scoping in every lookup, status
// guards on updates) so the services can be exercised without a database.

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.SocialAccount
	err      error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*models.SocialAccount)}
}

func copyAccount(sa *models.SocialAccount) *models.SocialAccount {
	cp := *sa
	return &cp
}

func (r *fakeAccountRepo) Upsert(_ context.Context, sa *models.SocialAccount) (*models.SocialAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.UserID == sa.UserID && existing.Platform == sa.Platform && existing.AccountID == sa.AccountID {
			existing.AccountName = sa.AccountName
			existing.ProfilePicture = sa.ProfilePicture
			existing.FollowersCount = sa.FollowersCount
			existing.AccessToken = sa.AccessToken
			existing.RefreshToken = sa.RefreshToken
			existing.TokenExpiresAt = sa.TokenExpiresAt
			existing.AccountStatus = sa.AccountStatus
			existing.UpdatedAt = time.Now()
			return copyAccount(existing), nil
		}
	}

	r.nextID++
	stored := copyAccount(sa)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.accounts[stored.ID] = stored
	return copyAccount(stored), nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (*models.SocialAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sa, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return copyAccount(sa), nil
}

func (r *fakeAccountRepo) GetForOwner(_ context.Context, id, userID int64) (*models.SocialAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sa, ok := r.accounts[id]
	if !ok || sa.UserID != userID {
		return nil, nil
	}
	return copyAccount(sa), nil
}

func (r *fakeAccountRepo) ListByUserID(_ context.Context, userID int64) ([]*models.SocialAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.SocialAccount
	for _, sa := range r.accounts {
		if sa.UserID == userID {
			out = append(out, copyAccount(sa))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAccountRepo) Disconnect(_ context.Context, id, userID int64) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sa, ok := r.accounts[id]
	if !ok || sa.UserID != userID {
		return 0, nil
	}
	sa.AccountStatus = models.AccountStatusDisconnected
	sa.AccessToken = models.NoSecret
	sa.RefreshToken = models.NoSecret
	sa.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakeAccountRepo) ExpireTokens(_ context.Context, cutoff time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, sa := range r.accounts {
		if sa.AccountStatus == models.AccountStatusConnected && !sa.TokenExpiresAt.IsZero() && sa.TokenExpiresAt.Before(cutoff) {
			sa.AccountStatus = models.AccountStatusDisconnected
			sa.AccessToken = models.NoSecret
			sa.RefreshToken = models.NoSecret
			affected++
		}
	}
	return affected, nil
}

// stored returns the live row, secrets included, for assertions on what
// actually sits at rest.
func (r *fakeAccountRepo) stored(id int64) *models.SocialAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id]
}

func (r *fakeAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

type fakePostRepo struct {
	mu        sync.Mutex
	nextID    int64
	posts     map[int64]*models.Post
	lastLimit int
	err       error

	// accountPlatform backs the platform filter that the SQL layer
	// resolves with a join.
	accountPlatform map[int64]string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:           make(map[int64]*models.Post),
		accountPlatform: make(map[int64]string),
	}
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Hashtags = append([]string(nil), p.Hashtags...)
	return &cp
}

func (r *fakePostRepo) Create(_ context.Context, _ *sql.Tx, post *models.Post) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := copyPost(post)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.posts[stored.ID] = stored
	return stored.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return copyPost(p), nil
}

func (r *fakePostRepo) GetForOwner(_ context.Context, id, userID int64) (*models.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return copyPost(p), nil
}

func (r *fakePostRepo) Update(_ context.Context, id, userID int64, upd *transfer.PostUpdate) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID || p.Status != models.PostStatusScheduled {
		return 0, nil
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Hashtags != nil {
		p.Hashtags = append([]string(nil), upd.Hashtags...)
	}
	if upd.ScheduledFor != nil {
		p.ScheduledFor = *upd.ScheduledFor
	}
	if upd.BrandProfileID != nil {
		v := *upd.BrandProfileID
		p.BrandProfileID = &v
	}
	p.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakePostRepo) UpdateStatus(_ context.Context, id, userID int64, from, to string) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID || p.Status != from {
		return 0, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakePostRepo) Remove(_ context.Context, id, userID int64) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

func (r *fakePostRepo) List(_ context.Context, userID int64, filter *transfer.PostFilter, limit, offset int) ([]*models.Post, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastLimit = limit

	var matched []*models.Post
	for _, p := range r.posts {
		if p.UserID != userID {
			continue
		}
		if filter != nil {
			if filter.Status != nil && p.Status != *filter.Status {
				continue
			}
			if filter.Platform != nil && r.accountPlatform[p.AccountID] != *filter.Platform {
				continue
			}
			if filter.ScheduledFrom != nil && p.ScheduledFor.Before(*filter.ScheduledFrom) {
				continue
			}
			if filter.ScheduledTo != nil && p.ScheduledFor.After(*filter.ScheduledTo) {
				continue
			}
		}
		matched = append(matched, copyPost(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ScheduledFor.Before(matched[j].ScheduledFor) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakeAssetRepo struct {
	mu     sync.Mutex
	nextID int64
	assets map[int64]*models.MediaAsset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[int64]*models.MediaAsset)}
}

func (r *fakeAssetRepo) Create(_ context.Context, _ *sql.Tx, ma *models.MediaAsset) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cp := *ma
	cp.ID = r.nextID
	r.assets[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeAssetRepo) GetForOwner(_ context.Context, id, userID int64) (*models.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ma, ok := r.assets[id]
	if !ok || ma.UserID != userID {
		return nil, nil
	}
	cp := *ma
	return &cp, nil
}

func (r *fakeAssetRepo) Remove(_ context.Context, id, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ma, ok := r.assets[id]
	if !ok || ma.UserID != userID {
		return 0, nil
	}
	delete(r.assets, id)
	return 1, nil
}

type fakePostMediaRepo struct {
	mu    sync.Mutex
	media []*models.PostMedia
}

func newFakePostMediaRepo() *fakePostMediaRepo {
	return &fakePostMediaRepo{}
}

func (r *fakePostMediaRepo) Create(_ context.Context, _ *sql.Tx, pm *models.PostMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *pm
	r.media = append(r.media, &cp)
	return nil
}

func (r *fakePostMediaRepo) ListByPostID(_ context.Context, postID int64) ([]*models.PostMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.PostMedia
	for _, pm := range r.media {
		if pm.PostID == postID {
			cp := *pm
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *fakePostMediaRepo) RemoveByPostID(_ context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.media[:0]
	for _, pm := range r.media {
		if pm.PostID != postID {
			kept = append(kept, pm)
		}
	}
	r.media = kept
	return nil
}

type windowKey struct {
	userID      int64
	platform    string
	actionType  string
	windowStart time.Time
}

// fakeRateLimitRepo keeps the increment conditional under one mutex, the
// same guarantee the single conditional statement gives in Postgres.
type fakeRateLimitRepo struct {
	mu      sync.Mutex
	windows map[windowKey]*struct{ count, max int }
	err     error
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{windows: make(map[windowKey]*struct{ count, max int })}
}

func (r *fakeRateLimitRepo) Consume(_ context.Context, userID int64, platform, actionType string, windowStart time.Time, maxRequests int) (int, bool, error) {
	if r.err != nil {
		return 0, false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := windowKey{userID, platform, actionType, windowStart}
	w, ok := r.windows[key]
	if !ok {
		w = &struct{ count, max int }{count: 0, max: maxRequests}
		r.windows[key] = w
	}
	if w.count >= w.max {
		return 0, false, nil
	}
	w.count++
	remaining := w.max - w.count
	return remaining, true, nil
}

func (r *fakeRateLimitRepo) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for key := range r.windows {
		if key.windowStart.Before(cutoff) {
			delete(r.windows, key)
			affected++
		}
	}
	return affected, nil
}
