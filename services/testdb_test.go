package services

import (
	"fmt"
	"testing"
	"time"

	"retro-arcade-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.PlaySession{},
		&models.Guild{},
		&models.GuildMember{},
		&models.Friendship{},
		&models.ChatMessage{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, totalExp int64) *models.User {
	t.Helper()

	user := &models.User{
		ID:             uuid.NewString(),
		ExternalUserID: "ext-" + username,
		Username:       username,
		TotalExp:       totalExp,
		Level:          LevelFromExp(totalExp).Level,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestGame(t *testing.T, db *gorm.DB, name string) *models.Game {
	t.Helper()

	game := &models.Game{
		ID:     uuid.NewString(),
		Name:   name,
		Slug:   name,
		Status: "published",
	}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to create test game %s: %v", name, err)
	}
	return game
}

// testClock is a manually advanced clock injected into services.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.current }

func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }
