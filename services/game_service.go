package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"retro-arcade-system/models"
	"retro-arcade-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

// MinimalGame struct for lightweight catalog listing
type MinimalGame struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	MainLogoURL string `json:"main_logo_url"`
	Category    string `json:"category"`
	PlayPath    string `json:"play_path"`
	TotalPlays  int64  `json:"total_plays"`
}

// UploadGame creates a new **draft** game from a .swf file or a zip archive
// containing one. Archives are extracted under public/flash/<id>/ and the
// playable .swf entrypoint is located inside.
func (s *GameService) UploadGame(c *fiber.Ctx) error {
	gameFile, err := c.FormFile("game_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_file is required"})
	}

	if gameFile.Size > 256*1024*1024 { // 256MB — Flash titles are small
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 256MB)"})
	}

	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	lower := strings.ToLower(gameFile.Filename)
	if !strings.HasSuffix(lower, ".swf") && !strings.HasSuffix(lower, ".zip") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_file must be a .swf or .zip"})
	}

	gameID := uuid.NewString()

	// Save the raw upload locally — large binaries stay off the CDN bucket
	localGamePath := utils.GetUploadPath("games/" + gameID + filepath.Ext(lower))
	if err := utils.SaveFile(gameFile, localGamePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "failed to save game file locally"})
	}

	playPath, err := utils.StageFlashGame(localGamePath, gameID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "no playable .swf found in upload", "cause": err.Error()})
	}

	game := &models.Game{
		ID:               gameID,
		Name:             name,
		Slug:             slug.Make(name),
		ShortDescription: c.FormValue("short_description"),
		LongDescription:  c.FormValue("long_description"),
		Category:         c.FormValue("category"),
		AgeRating:        c.FormValue("age_rating"),
		FileURL:          "/" + localGamePath,
		PlayPath:         playPath,
		Status:           "draft",
	}

	// 🖼️ Main logo → R2 (small, public asset)
	if logoFile, err := c.FormFile("main_logo"); err == nil && logoFile.Size > 0 {
		logoExt := filepath.Ext(logoFile.Filename)
		if logoExt == "" {
			logoExt = ".png"
		}
		logoKey := "logos/" + uuid.NewString() + logoExt
		logoURL, err := utils.UploadFileToR2(logoFile, logoKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "failed to upload main logo to R2"})
		}
		game.MainLogoURL = logoURL
	}

	if err := s.DB.Create(game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(game)
}

// GetAllGames returns every game, including drafts (admin/editor view)
func (s *GameService) GetAllGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

// GetCatalog returns the lightweight published-games list the player UI renders
func (s *GameService) GetCatalog(c *fiber.Ctx) error {
	db := s.DB.Where("status = ?", "published")
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}

	var games []models.Game
	if err := db.Order("total_plays DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch catalog"})
	}

	minimal := make([]MinimalGame, 0, len(games))
	for _, game := range games {
		minimal = append(minimal, MinimalGame{
			ID:          game.ID,
			Name:        game.Name,
			Slug:        game.Slug,
			MainLogoURL: game.MainLogoURL,
			Category:    game.Category,
			PlayPath:    game.PlayPath,
			TotalPlays:  game.TotalPlays,
		})
	}
	return c.JSON(minimal)
}

// GetGameByID returns a single game by ID or slug
func (s *GameService) GetGameByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var game models.Game
	if err := s.DB.Where("id = ? OR slug = ?", id, id).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(game)
}

// UpdateGame allows editing metadata and publishing control
func (s *GameService) UpdateGame(c *fiber.Ctx) error {
	id := c.Params("id")

	var game models.Game
	if err := s.DB.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if name := c.FormValue("name"); name != "" {
		game.Name = name
		game.Slug = slug.Make(name)
	}
	if v := c.FormValue("short_description"); v != "" {
		game.ShortDescription = v
	}
	if v := c.FormValue("long_description"); v != "" {
		game.LongDescription = v
	}
	if v := c.FormValue("category"); v != "" {
		game.Category = v
	}
	if v := c.FormValue("age_rating"); v != "" {
		game.AgeRating = v
	}

	// 🖼️ Main logo (optional replacement)
	if logoFile, err := c.FormFile("main_logo"); err == nil && logoFile.Size > 0 {
		logoExt := filepath.Ext(logoFile.Filename)
		if logoExt == "" {
			logoExt = ".png"
		}
		logoKey := "logos/" + uuid.NewString() + logoExt
		logoURL, err := utils.UploadFileToR2(logoFile, logoKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "failed to upload updated logo to R2"})
		}
		game.MainLogoURL = logoURL
	}

	// 🎛️ Publishing control
	status := c.FormValue("status")
	switch status {
	case "draft", "published":
		game.Status = status
		game.PublishAt = nil
	case "scheduled":
		tsStr := c.FormValue("publish_at")
		if tsStr == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at required for scheduled status"})
		}
		publishAt, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid publish_at — use RFC3339 (e.g., 2025-12-31T23:00:00Z)",
			})
		}
		game.PublishAt = &publishAt
		game.Status = "scheduled"
	default:
		if status != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status (use: draft, scheduled, published)"})
		}
	}

	if err := s.DB.Save(&game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(game)
}

// DeleteGame soft-deletes a game; play history rows keep their game_id
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	id := c.Params("id")

	var game models.Game
	if err := s.DB.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var openSessions int64
	s.DB.Model(&models.PlaySession{}).
		Where("game_id = ? AND status = ?", id, models.SessionStatusOpen).
		Count(&openSessions)
	if openSessions > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":         "cannot delete game: players have open sessions",
			"open_sessions": openSessions,
		})
	}

	if err := s.DB.Delete(&game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}

	log.Printf("🗑️ Game soft-deleted: %s (%s)", game.Name, id)
	return c.JSON(fiber.Map{
		"message": "game soft-deleted successfully",
		"id":      id,
	})
}
