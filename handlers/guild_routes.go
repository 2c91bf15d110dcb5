// handlers/guild_routes.go
package handlers

import (
	"strconv"

	"retro-arcade-system/middleware"
	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGuildRoutes(app *fiber.App, guildService *services.GuildService) {
	// 🔓 Public: browse guilds
	app.Get("/guilds", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		guilds, err := guildService.ListGuilds(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list guilds"})
		}
		return c.JSON(guilds)
	})

	app.Get("/guilds/:id", func(c *fiber.Ctx) error {
		guild, members, err := guildService.GetGuild(c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"guild":   guild,
			"members": members,
		})
	})

	// 🔐 Secured routes — require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/guilds", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}

		guild, err := guildService.CreateGuild(userID, req.Name, req.Description)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(guild)
	})

	secured.Post("/guilds/:id/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		guild, err := guildService.JoinGuild(userID, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(guild)
	})

	secured.Post("/guilds/leave", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := guildService.LeaveGuild(userID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "left guild"})
	})

	secured.Post("/guilds/kick", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			UserID string `json:"user_id"` // external ID of the member to kick
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		if err := guildService.KickMember(userID, req.UserID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "member kicked"})
	})

	secured.Post("/guilds/promote", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		if err := guildService.PromoteMember(userID, req.UserID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "member promoted to admin"})
	})

	// 💬 Chat — plain persistence, clients poll recent history
	secured.Post("/chat", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Body  string `json:"body"`
			Guild bool   `json:"guild"` // true = guild channel, false = lobby
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.Body == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body is required"})
		}

		msg, err := guildService.PostMessage(userID, req.Body, req.Guild)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	secured.Get("/chat", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		var guildID *string
		if g := c.Query("guild_id"); g != "" {
			guildID = &g
		}

		msgs, err := guildService.RecentMessages(guildID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch messages"})
		}
		return c.JSON(msgs)
	})
}
