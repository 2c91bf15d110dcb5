// handlers/common.go
package handlers

import (
	"errors"

	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps service sentinels to HTTP responses so every route
// reports the same shapes: not-found → 404, precondition → 409, rest → 500.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrGuildNotFound),
		errors.Is(err, services.ErrRequestNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNoActiveSession),
		errors.Is(err, services.ErrAlreadyInGuild),
		errors.Is(err, services.ErrNotInGuild),
		errors.Is(err, services.ErrDuplicateRequest):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNotGuildOwner):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
