package handlers

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/services"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"gorm.io/gorm"
)

// Core services, constructed once at startup with the storage handle and
// shared by every handler in this package.
var (
	karmaService       *services.KarmaService
	badgeService       *services.BadgeService
	notifyService      *services.NotificationService
	leaderboardService *services.LeaderboardService
)

// InitServices wires the reputation core to the storage dependency. Call
// once from main after the database is connected; the returned services
// are the same instances the handlers use, so callers (seeding, cron) and
// the request path share one core.
func InitServices(db *gorm.DB) (*services.KarmaService, *services.BadgeService, *services.LeaderboardService) {
	notifyService = services.NewNotificationService(db)
	karmaService = services.NewKarmaService(db)
	badgeService = services.NewBadgeService(db, notifyService)
	leaderboardService = services.NewLeaderboardService(db)
	return karmaService, badgeService, leaderboardService
}

// refreshReputation re-scores a user after a karma-relevant action. It runs
// in the request path but never blocks the response on failure: errors are
// logged, the action itself already succeeded.
func refreshReputation(userID string) {
	if err := karmaService.UpdateUserKarma(userID); err != nil {
		logger.Error().Err(err).Str("userId", userID).Msg("Karma refresh failed")
	}
	if _, err := badgeService.CheckAndAwardBadges(userID); err != nil {
		logger.Error().Err(err).Str("userId", userID).Msg("Badge check failed")
	}
}
