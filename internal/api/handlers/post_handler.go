package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/postqueue/postqueue/internal/apperror"
	"github.com/postqueue/postqueue/internal/queue"
	"github.com/postqueue/postqueue/internal/service"
	"github.com/postqueue/postqueue/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, AsynqClient: asynqClient}
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PostCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, delay, err := h.s.Schedule(c.Context(), userID, &req)
	if err != nil {
		return ErrorResponse(c, err)
	}

	if err := queue.EnqueuePost(h.AsynqClient, queue.DispatchPostPayload{PostID: post.ID}, delay); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"post":  post,
			"error": "Post saved but dispatch scheduling failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, media, err := h.s.PostInfo(c.Context(), userID, int64(postID))
		if err != nil {
			return ErrorResponse(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"post":  post,
			"media": media,
		})
	}

	filter, err := parsePostFilter(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	posts, total, err := h.s.List(c.Context(), userID, filter, limit, offset)
	if err != nil {
		return ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
		"total": total,
	})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	var req transfer.PostUpdate
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, int64(postID), &req)
	if err != nil {
		return ErrorResponse(c, err)
	}

	// a moved schedule needs its own dispatch task; the stale one skips
	if req.ScheduledFor != nil {
		delay := time.Until(post.ScheduledFor)
		if delay < 0 {
			delay = 0
		}
		if err := queue.EnqueuePost(h.AsynqClient, queue.DispatchPostPayload{PostID: post.ID}, delay); err != nil {
			slog.Error(err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) CancelPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	post, err := h.s.Cancel(c.Context(), userID, int64(postID))
	if err != nil {
		return ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) MarkPublished(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	post, err := h.s.MarkPublished(c.Context(), userID, int64(postID))
	if err != nil {
		return ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) MarkFailed(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	post, err := h.s.MarkFailed(c.Context(), userID, int64(postID))
	if err != nil {
		return ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return ErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func parsePostFilter(c *fiber.Ctx) (*transfer.PostFilter, error) {
	filter := &transfer.PostFilter{}

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if platform := c.Query("platform"); platform != "" {
		filter.Platform = &platform
	}
	if from := c.Query("scheduled_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return nil, fmt.Errorf("%w: scheduled_from: %v", apperror.ErrInvalidArgument, err)
		}
		filter.ScheduledFrom = &t
	}
	if to := c.Query("scheduled_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return nil, fmt.Errorf("%w: scheduled_to: %v", apperror.ErrInvalidArgument, err)
		}
		filter.ScheduledTo = &t
	}

	return filter, nil
}
