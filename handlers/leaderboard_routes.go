// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"retro-arcade-system/middleware"
	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboard *services.LeaderboardService) {
	if leaderboard == nil {
		// Redis not configured; rankings disabled for this deployment
		return
	}

	app.Get("/leaderboard/exp", func(c *fiber.Ctx) error {
		limit, _ := strconv.ParseInt(c.Query("limit", "25"), 10, 64)
		entries, err := leaderboard.TopByExp(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read leaderboard"})
		}
		return c.JSON(entries)
	})

	app.Get("/leaderboard/playtime", func(c *fiber.Ctx) error {
		limit, _ := strconv.ParseInt(c.Query("limit", "25"), 10, 64)
		entries, err := leaderboard.TopByPlaytime(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read leaderboard"})
		}
		return c.JSON(entries)
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		entry, err := leaderboard.UserRank(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not ranked yet"})
		}
		return c.JSON(entry)
	})
}
