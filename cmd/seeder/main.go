package main

import (
	"encoding/json"
	"log"

	"github.com/Corvynix/PromptLibrary-sub000/internal/config"
	"github.com/Corvynix/PromptLibrary-sub000/internal/database"
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/internal/pqas"
	"github.com/Corvynix/PromptLibrary-sub000/internal/services"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	config.LoadConfig()
	logger.Init("development")
	db := database.Connect()

	log.Println("🔄 Running migrations (just in case)...")
	db.AutoMigrate(
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

	log.Println("🎖️ Seeding Badge Catalogue...")
	badgeSvc := services.NewBadgeService(db, services.NewNotificationService(db))
	if err := badgeSvc.SeedBadges(); err != nil {
		log.Fatalf("❌ Failed to seed badges: %v", err)
	}

	log.Println("👤 Fetching Admin User...")
	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		log.Println("⚠️ No ADMIN found. Creating a fallback admin...")
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		admin = models.User{
			Username: "admin",
			Name:     "Library Admin",
			Email:    "admin@promptlibrary.dev",
			Password: string(hash),
			Role:     models.RoleAdmin,
			Image:    "https://api.dicebear.com/7.x/avataaars/svg?seed=admin",
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("❌ Failed to create admin: %v", err)
		}
	}
	log.Printf("👉 Using Creator: %s (%s)", admin.Username, admin.ID)

	seedPrompts(db, admin)

	log.Println("🔢 Computing initial karma...")
	karmaSvc := services.NewKarmaService(db)
	if err := karmaSvc.UpdateUserKarma(admin.ID); err != nil {
		log.Printf("⚠️ Karma bootstrap failed: %v", err)
	}

	log.Println("✅ Seeding Complete!")
}

func seedPrompts(db *gorm.DB, admin models.User) {
	log.Println("📜 Seeding Demo Prompts...")

	prompts := []struct {
		Title       string
		Description string
		Type        models.PromptType
		Tags        []string
		Content     pqas.Content
	}{
		{
			Title:       "Concise Article Summarizer",
			Description: "Turns long articles into a headline plus three key facts.",
			Type:        models.PromptTypeText,
			Tags:        []string{"summarization", "writing"},
			Content: pqas.FromText("You are a helpful AI assistant specialized in summarizing documents.\n\n" +
				"Task: Read the provided article and produce a concise summary.\n\n" +
				"Format your response as follows:\n" +
				"1. A one-line headline.\n" +
				"2. Three bullet points with the key facts.\n" +
				"3. A closing sentence with the main takeaway."),
		},
		{
			Title:       "Code Review Companion",
			Description: "Structured review checklist for pull requests.",
			Type:        models.PromptTypeText,
			Tags:        []string{"code", "review"},
			Content: pqas.Content{
				System:       "Act as a senior engineer reviewing a pull request.",
				User:         "Review the diff below and list concrete improvements.",
				Instructions: "Context: a production Go service. Goal: catch bugs early. Output format: a numbered list. Example: 1. Rename x to y.",
			},
		},
		{
			Title:       "Watercolor Scene Generator",
			Description: "Image prompt for soft watercolor landscapes.",
			Type:        models.PromptTypeImage,
			Tags:        []string{"image", "art"},
			Content: pqas.Content{
				MainPrompt: "A quiet mountain lake at dawn, painted in loose watercolor washes. Context: soft mist, muted palette. Format: wide landscape composition.",
			},
		},
		{
			Title:       "Product Demo Storyboard",
			Description: "Video prompt walking through a product demo in five shots.",
			Type:        models.PromptTypeVideo,
			Tags:        []string{"video", "marketing"},
			Content: pqas.Content{
				Instructions: "Goal: a 30-second product demo. Format: five shots, one per storyboard step.",
				StoryboardSteps: []string{
					"1. Close-up of the problem the user faces.",
					"2. App opens on the home screen.",
					"3. The key feature in action.",
					"4. A satisfied user reaction.",
					"5. Logo and call to action.",
				},
			},
		},
	}

	for _, p := range prompts {
		prompt := models.Prompt{
			Title:       p.Title,
			Slug:        utils.GenerateSlug(p.Title),
			Description: p.Description,
			Type:        p.Type,
			Tags:        p.Tags,
			Visibility:  "public",
			AuthorID:    admin.ID,
		}
		if err := db.Create(&prompt).Error; err != nil {
			log.Printf("❌ Failed to create prompt %s: %v", p.Title, err)
			continue
		}

		version := models.PromptVersion{
			PromptID:        prompt.ID,
			VersionNumber:   1,
			Body:            p.Content.Text,
			System:          p.Content.System,
			UserPrompt:      p.Content.User,
			Instructions:    p.Content.Instructions,
			MainPrompt:      p.Content.MainPrompt,
			StoryboardSteps: p.Content.StoryboardSteps,
			ChangeNote:      "Initial version",
		}
		if err := db.Create(&version).Error; err != nil {
			log.Printf("❌ Failed to create version for %s: %v", p.Title, err)
			continue
		}

		score := pqas.Evaluate(p.Content)
		breakdown, _ := json.Marshal(score.Breakdown)
		record := models.QualityScore{
			VersionID:     version.ID,
			Clarity:       score.Clarity,
			Specificity:   score.Specificity,
			Effectiveness: score.Effectiveness,
			Consistency:   score.Consistency,
			Safety:        score.Safety,
			Efficiency:    score.Efficiency,
			Composite:     score.Composite,
			Breakdown:     string(breakdown),
		}
		if err := db.Create(&record).Error; err != nil {
			log.Printf("❌ Failed to score %s: %v", p.Title, err)
			continue
		}

		log.Printf("   📝 Prompt Added: %s (PQAS %d)", p.Title, score.Composite)
	}
}
