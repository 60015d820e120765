package queue

import (
	"github.com/postqueue/postqueue/internal/repository"
	"github.com/postqueue/postqueue/internal/service"
)

// Queue is the dispatch collaborator: it wakes up when a post's scheduled
// time arrives, decides whether the post is still dispatchable and reports
// the outcome back through the post lifecycle.
type Queue struct {
	pr repository.PostRepository
	ps service.PostService
	ac service.AccountService
}

func NewQueue(
	pr repository.PostRepository,
	ps service.PostService,
	ac service.AccountService) *Queue {
	return &Queue{
		pr: pr,
		ps: ps,
		ac: ac,
	}
}

const TaskTypeDispatchPost = "post:dispatch"

type DispatchPostPayload struct {
	PostID int64 `json:"post_id"`
}
