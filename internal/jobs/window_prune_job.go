package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/postqueue/postqueue/internal/repository"
)

// Rate limit windows are write-once-per-hour and never read after they
// close; this job is the retention path that keeps the table from growing
// without bound.
type WindowPruneJob struct {
	rl        repository.RateLimitRepository
	retention time.Duration
}

func NewWindowPruneJob(rl repository.RateLimitRepository) *WindowPruneJob {
	return &WindowPruneJob{
		rl:        rl,
		retention: 24 * time.Hour,
	}
}

func (j *WindowPruneJob) PruneWindows() {
	ctx := context.Background()

	cutoff := time.Now().UTC().Add(-j.retention)
	pruned, err := j.rl.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if pruned > 0 {
		slog.Info("pruned rate limit windows", "count", pruned)
	}
}
