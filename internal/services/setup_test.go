package services

import (
	"fmt"
	"testing"

	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database named after the test,
// so tests in this package never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger.Init("development")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Prompt{},
		&models.PromptVersion{},
		&models.QualityScore{},
		&models.Remix{},
		&models.Vote{},
		&models.UserFollow{},
		&models.Referral{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestPrompt(t *testing.T, db *gorm.DB, authorID string) models.Prompt {
	t.Helper()
	prompt := models.Prompt{
		Title:    "Test Prompt",
		Slug:     uuid.New().String(),
		Type:     models.PromptTypeText,
		AuthorID: authorID,
	}
	if err := db.Create(&prompt).Error; err != nil {
		t.Fatalf("Failed to create prompt: %v", err)
	}
	return prompt
}

// addScoredVersion appends a version to the prompt with a fixed composite.
func addScoredVersion(t *testing.T, db *gorm.DB, promptID string, number, composite int) models.PromptVersion {
	t.Helper()
	version := models.PromptVersion{
		PromptID:      promptID,
		VersionNumber: number,
		Body:          "test body",
	}
	if err := db.Create(&version).Error; err != nil {
		t.Fatalf("Failed to create version: %v", err)
	}
	score := models.QualityScore{
		VersionID: version.ID,
		Composite: composite,
	}
	if err := db.Create(&score).Error; err != nil {
		t.Fatalf("Failed to create quality score: %v", err)
	}
	return version
}

func addUpvote(t *testing.T, db *gorm.DB, voterID, promptID string) {
	t.Helper()
	vote := models.Vote{
		UserID:      voterID,
		VotableType: "prompt",
		VotableID:   promptID,
		Value:       models.VoteUp,
	}
	if err := db.Create(&vote).Error; err != nil {
		t.Fatalf("Failed to create vote: %v", err)
	}
}
