// handlers/game_routes.go
package handlers

import (
	"retro-arcade-system/middleware"
	"retro-arcade-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/games", gameService.GetCatalog)

	// 🔐 Secured routes — editor/admin operations.
	// "/games/all" must register before "/games/:id" or the param route wins.
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/games/all", gameService.GetAllGames)

	app.Get("/games/:id", gameService.GetGameByID)

	secured.Post("/games", gameService.UploadGame)
	secured.Put("/games/:id", gameService.UpdateGame)
	secured.Patch("/games/:id", gameService.UpdateGame)
	secured.Delete("/games/:id", gameService.DeleteGame)
}
