package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/internal/transfer"
)

// DefaultMaxRequests applies to action types without a configured ceiling.
const DefaultMaxRequests = 60

// RateLimitService admits or rejects quota-consuming actions against a
// fixed 60 minute window per (user, platform, action type). Fixed-window on
// purpose: up to 2x the ceiling can pass across a window boundary, which is
// the accepted cost of a single conditional statement per check. A stricter
// policy belongs in a separately named limiter, not here.
type RateLimitService interface {
	CheckAndConsume(ctx context.Context, userID int64, platform, actionType string) (*transfer.Admission, error)
}

type rateLimitService struct {
	rl     repository.RateLimitRepository
	limits map[string]int
	now    func() time.Time
}

func NewRateLimitService(rl repository.RateLimitRepository, limits map[string]int) RateLimitService {
	return &rateLimitService{
		rl:     rl,
		limits: limits,
		now:    time.Now,
	}
}

func (s *rateLimitService) CheckAndConsume(ctx context.Context, userID int64, platform, actionType string) (*transfer.Admission, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", apperror.ErrInvalidArgument)
	}
	if platform == "" || actionType == "" {
		return nil, fmt.Errorf("%w: platform and action_type are required", apperror.ErrInvalidArgument)
	}

	maxRequests := s.limits[actionType]
	if maxRequests == 0 {
		maxRequests = DefaultMaxRequests
	}

	// Windows anchor on the UTC hour bucket, so lazy creation under
	// concurrency is a plain conflict on the unique key.
	windowStart := s.now().UTC().Truncate(time.Hour)

	remaining, admitted, err := s.rl.Consume(ctx, userID, platform, actionType, windowStart, maxRequests)
	if err != nil {
		// Fail open: when the store is down we admit rather than block
		// the product. Callers needing strict enforcement must layer a
		// harder limiter in front of dispatch.
		slog.Warn("rate limit check failed open",
			"user_id", userID, "platform", platform, "action_type", actionType, "error", err.Error())
		return &transfer.Admission{Admitted: true, Remaining: 0}, nil
	}

	if !admitted {
		return &transfer.Admission{Admitted: false, Remaining: 0}, nil
	}

	return &transfer.Admission{Admitted: true, Remaining: remaining}, nil
}
