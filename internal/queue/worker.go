package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/models"
)

func (q *Queue) HandleDispatchPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.DispatchPost(ctx, payload.PostID)
}

// DispatchPost performs the simulated platform call for a due post. Posts
// that were cancelled, already handled or rescheduled since the task was
// enqueued are skipped; an edit that moves scheduled_for enqueues its own
// task.
func (q *Queue) DispatchPost(ctx context.Context, postID int64) error {
	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info("dispatch task for missing post", "post_id", postID)
		return nil
	}
	if models.TerminalStatus(post.Status) {
		slog.Info("skipping dispatch", "post_id", postID, "status", post.Status)
		return nil
	}
	if post.ScheduledFor.After(time.Now()) {
		slog.Info("dispatch task arrived before schedule, skipping stale task", "post_id", postID)
		return nil
	}

	creds, err := q.ac.DispatchCredentials(ctx, post.AccountID)
	if err != nil {
		// A store outage is transient; returning the error keeps the task
		// on the queue for a retry instead of burying the post as failed.
		if errors.Is(err, apperror.ErrStorageUnavailable) {
			slog.Warn("credential lookup unavailable, retrying dispatch", "post_id", postID, "error", err.Error())
			return err
		}
		slog.Info("post not dispatchable", "post_id", postID, "error", err.Error())
		if _, err := q.ps.MarkFailed(ctx, post.UserID, postID); err != nil {
			slog.Error(err.Error())
		}
		return nil
	}

	// The platform call itself is out of scope; holding decrypted
	// credentials here is the whole dispatch contract.
	_ = creds
	slog.Info("dispatching post", "post_id", postID, "account_id", post.AccountID)

	if _, err := q.ps.MarkPublished(ctx, post.UserID, postID); err != nil {
		slog.Error(err.Error())
		return err
	}

	return nil
}
