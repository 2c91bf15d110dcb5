package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"retro-arcade-system/handlers"
	"retro-arcade-system/middleware"
	"retro-arcade-system/models"
	"retro-arcade-system/services"
	"retro-arcade-system/utils"
	"retro-arcade-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 256 * 1024 * 1024, // room for zipped game archives
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.PlaySession{},
		&models.Guild{},
		&models.GuildMember{},
		&models.Friendship{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}
	if err := os.MkdirAll(utils.FlashPublicRoot, os.ModePerm); err != nil {
		log.Fatal("failed to ensure flash public dir:", err)
	}

	gameService := services.NewGameService(db)
	sessionService := services.NewSessionService(db)
	guildService := services.NewGuildService(db)
	friendService := services.NewFriendService(db)

	// Redis rankings are optional — the service runs without them
	var leaderboard *services.LeaderboardService
	if os.Getenv("REDIS_ADDR") != "" {
		leaderboard, err = services.NewLeaderboardService()
		if err != nil {
			log.Fatal("failed to initialize leaderboard Redis:", err)
		}
		sessionService.Leaderboard = leaderboard
	} else {
		log.Println("⚠️  REDIS_ADDR not set — leaderboards disabled")
	}

	// --- Profile sync from the identity provider ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("ARCADE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("ARCADE_SERVICE_TOKEN environment variable not set")
	}

	syncWorker := workers.NewProfileSyncWorker(db, guildService, syncServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)

	gameService.StartPublishScheduler()
	guildService.StartAggregateReconciler(15 * time.Minute)

	// ✅ Setup routes — enforced Gateway auth on everything
	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupSessionRoutes(app, sessionService)
	handlers.SetupGuildRoutes(app, guildService)
	handlers.SetupFriendRoutes(app, friendService)
	handlers.SetupLeaderboardRoutes(app, leaderboard)

	app.Static("/uploads", "./uploads")
	app.Static("/flash", "./"+utils.FlashPublicRoot) // staged .swf files

	go func() {
		if err := app.Listen(":5100"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5100")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Publish scheduler + guild aggregate reconciler running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
