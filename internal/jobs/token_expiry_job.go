package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/postqueue/postqueue/internal/repository"
)

// TokenExpiryJob sweeps connected accounts whose platform tokens have
// lapsed. An account with a dead token cannot dispatch, so it is moved to
// disconnected, which also clears its stored secrets. Reconnecting restores
// it with fresh credentials.
type TokenExpiryJob struct {
	sr repository.SocialAccountRepository
}

func NewTokenExpiryJob(sr repository.SocialAccountRepository) *TokenExpiryJob {
	return &TokenExpiryJob{
		sr: sr,
	}
}

func (j *TokenExpiryJob) ExpireTokens() {
	ctx := context.Background()

	expired, err := j.sr.ExpireTokens(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if expired > 0 {
		slog.Info("disconnected accounts with expired tokens", "count", expired)
	}
}
