package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/postqueue/postqueue/internal/apperror"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// ErrorResponse maps the failure taxonomy onto HTTP statuses. The taxonomy
// name is surfaced so clients can branch without string matching the detail.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, apperror.ErrInvalidArgument):
		status = fiber.StatusBadRequest
		kind = "invalid_argument"
	case errors.Is(err, apperror.ErrNotFound):
		status = fiber.StatusNotFound
		kind = "not_found"
	case errors.Is(err, apperror.ErrInvalidState):
		status = fiber.StatusConflict
		kind = "invalid_state"
	case errors.Is(err, apperror.ErrStorageUnavailable):
		status = fiber.StatusServiceUnavailable
		kind = "storage_unavailable"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": kind,
		"detail": err.Error(),
	})
}
