package handlers

import (
	"net/http"

	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RecalculateAllKarma POST /admin/karma/recalculate
// Kicks off the full karma batch in the background and returns
// immediately. The nightly cron run is the authoritative schedule; this is
// the manual trigger.
func RecalculateAllKarma(c *gin.Context) {
	go func() {
		processed, err := karmaService.RecalculateAll()
		if err != nil {
			logger.Error().Err(err).Msg("Manual karma batch failed to start")
			return
		}
		leaderboardService.Invalidate()
		logger.Info().Int("processed", processed).Msg("Manual karma batch finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Karma recalculation started"})
}

// SeedBadgeCatalogue POST /admin/badges/seed
// Idempotent: safe to call on every deploy.
func SeedBadgeCatalogue(c *gin.Context) {
	if err := badgeService.SeedBadges(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed badges"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Badge catalogue seeded"})
}
