// handlers/session_routes.go
package handlers

import (
	"errors"
	"strconv"

	"retro-arcade-system/middleware"
	"retro-arcade-system/models"
	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService) {
	// 🔓 Public: pure curve preview, e.g. for the level-up progress bar
	app.Get("/levels/preview", func(c *fiber.Ctx) error {
		exp, err := strconv.ParseInt(c.Query("exp", "0"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "exp must be an integer"})
		}
		return c.JSON(services.LevelFromExp(exp))
	})

	// 🔐 Secured routes — require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/sessions/start", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			GameID string `json:"game_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.GameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id is required"})
		}

		sess, err := sessionService.StartSession(userID, req.GameID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session_id": sess.ID,
			"started_at": sess.StartedAt,
		})
	})

	secured.Post("/sessions/heartbeat", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		hb, err := sessionService.Heartbeat(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(hb)
	})

	secured.Post("/sessions/end", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Completed bool `json:"completed"`
		}
		var req Req
		_ = c.BodyParser(&req) // body is optional; completed defaults to false

		result, err := sessionService.EndSession(userID, req.Completed)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var user models.User
		if err := sessionService.DB.Where("external_user_id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "DB error fetching progress",
				"cause": err.Error(),
			})
		}

		lp := services.LevelFromExp(user.TotalExp)
		return c.JSON(fiber.Map{
			"id":                     user.ID,
			"username":               user.Username,
			"total_exp":              user.TotalExp,
			"level":                  lp.Level,
			"current_level_exp":      lp.CurrentLevelExp,
			"next_level_exp":         lp.NextLevelExp,
			"progress":               lp.Progress,
			"total_playtime_minutes": user.TotalPlaytimeMinutes,
			"guild_id":               user.GuildID,
			"last_level_up_at":       user.LastLevelUpAt,
			"last_active_at":         user.LastActiveAt,
		})
	})

	secured.Get("/sessions/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		sessions, err := sessionService.RecentSessions(userID, limit)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(sessions)
	})

	secured.Delete("/sessions/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		deleted, err := sessionService.ClearHistory(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "session history cleared",
			"deleted": deleted,
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.XP < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and positive xp required"})
		}

		result, err := sessionService.AwardExp(req.UserID, req.XP, req.Reason)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":   "XP granted successfully",
			"user_id":   req.UserID,
			"xp":        req.XP,
			"total_exp": result.TotalExp,
			"level":     result.NewLevel,
		})
	})

	adminGroup.Post("/xp/reset", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id required"})
		}

		if err := sessionService.ResetExp(req.UserID, req.Reason); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "XP reset",
			"user_id": req.UserID,
		})
	})
}
