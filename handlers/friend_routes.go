// handlers/friend_routes.go
package handlers

import (
	"retro-arcade-system/middleware"
	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFriendRoutes(app *fiber.App, friendService *services.FriendService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/friends", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		friends, err := friendService.ListFriends(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(friends)
	})

	secured.Get("/friends/requests", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		pending, err := friendService.PendingRequests(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(pending)
	})

	secured.Post("/friends/requests", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Username string `json:"username"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.Username == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required"})
		}

		edge, err := friendService.SendRequest(userID, req.Username)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(edge)
	})

	secured.Post("/friends/requests/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		edge, err := friendService.AcceptRequest(userID, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(edge)
	})

	secured.Delete("/friends/:username", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := friendService.RemoveFriend(userID, c.Params("username")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "friend removed"})
	})
}
