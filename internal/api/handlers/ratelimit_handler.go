package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postqueue/postqueue/internal/service"
)

type RateLimitHandler struct {
	s service.RateLimitService
}

func NewRateLimitHandler(service service.RateLimitService) *RateLimitHandler {
	return &RateLimitHandler{s: service}
}

// CheckAndConsume admits or rejects one quota-consuming action. A rejection
// is a 429 with the admission body, not an error payload.
func (h *RateLimitHandler) CheckAndConsume(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Query("platform")
	actionType := c.Query("action_type")

	admission, err := h.s.CheckAndConsume(c.Context(), userID, platform, actionType)
	if err != nil {
		return ErrorResponse(c, err)
	}

	if !admission.Admitted {
		return c.Status(fiber.StatusTooManyRequests).JSON(admission)
	}

	return c.Status(fiber.StatusOK).JSON(admission)
}
