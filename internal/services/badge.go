package services

import (
	"fmt"
	"time"

	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Composite cutoff for the high-quality version count metric. Badge copy
// ("Gold PQAS") references this exact value.
const highQualityCutoff = 85

// BadgeService evaluates the badge catalogue against live user aggregates,
// awards newly qualified badges, and fans out notifications.
type BadgeService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewBadgeService(db *gorm.DB, notifier *NotificationService) *BadgeService {
	return &BadgeService{db: db, notifier: notifier}
}

// CheckAndAwardBadges awards every catalogue badge the user newly
// qualifies for. Awarding is idempotent: the insert is keyed on
// (user, badge) and conflicts are ignored, so double-triggering an action
// never produces a duplicate. Returns the badges awarded by this call.
func (s *BadgeService) CheckAndAwardBadges(userID string) ([]models.Badge, error) {
	var existingIDs []string
	if err := s.db.Model(&models.UserBadge{}).Where("user_id = ?", userID).Pluck("badge_id", &existingIDs).Error; err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	var catalogue []models.Badge
	if err := s.db.Find(&catalogue).Error; err != nil {
		return nil, err
	}

	// Metrics are recomputed live per check, not read from a cache, so a
	// badge unlocks on the action that crossed the threshold.
	metrics := map[models.CriteriaType]func() (float64, error){
		models.CriteriaPromptCount:      func() (float64, error) { return s.countPrompts(userID) },
		models.CriteriaRemixCount:       func() (float64, error) { return s.countRemixes(userID) },
		models.CriteriaHighQualityCount: func() (float64, error) { return s.countHighQualityVersions(userID) },
		models.CriteriaTotalUses:        func() (float64, error) { return s.sumTotalUses(userID) },
		models.CriteriaUpvotesReceived:  func() (float64, error) { return s.countUpvotesReceived(userID) },
		models.CriteriaFollowerCount:    func() (float64, error) { return s.countFollowers(userID) },
		models.CriteriaKarmaScore:       func() (float64, error) { return s.currentKarmaScore(userID) },
	}

	computed := make(map[models.CriteriaType]float64)
	var awarded []models.Badge

	for _, badge := range catalogue {
		if existing[badge.ID] {
			continue
		}

		fetch, ok := metrics[badge.CriteriaType]
		if !ok {
			// Unknown criteria type: the badge is simply never awarded.
			continue
		}
		value, cached := computed[badge.CriteriaType]
		if !cached {
			v, err := fetch()
			if err != nil {
				return awarded, err
			}
			computed[badge.CriteriaType] = v
			value = v
		}

		if !criteriaSatisfied(value, badge.CriteriaOperator, badge.CriteriaValue) {
			continue
		}

		userBadge := models.UserBadge{
			UserID:     userID,
			BadgeID:    badge.ID,
			UnlockedAt: time.Now(),
		}
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&userBadge)
		if res.Error != nil {
			return awarded, res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race with a concurrent award; nothing to notify.
			continue
		}

		awarded = append(awarded, badge)
		s.notifier.Notify(models.Notification{
			UserID:  userID,
			Type:    models.NotificationTypeBadgeUnlocked,
			Title:   "Badge unlocked!",
			Message: fmt.Sprintf("You earned the %q badge: %s", badge.Name, badge.Description),
			Link:    "/profile/badges",
		})
		logger.Info().Str("userId", userID).Str("badge", badge.Name).Msg("Badge awarded")
	}

	return awarded, nil
}

// criteriaSatisfied interprets a badge's {operator, value} against the
// computed metric. The operator set is closed; anything unrecognized is
// never satisfied rather than an error.
func criteriaSatisfied(metric float64, operator string, target float64) bool {
	switch operator {
	case ">=":
		return metric >= target
	case ">":
		return metric > target
	case "=", "==":
		return metric == target
	case "<=":
		return metric <= target
	case "<":
		return metric < target
	default:
		return false
	}
}

func (s *BadgeService) countPrompts(userID string) (float64, error) {
	var n int64
	err := s.db.Model(&models.Prompt{}).Where("author_id = ?", userID).Count(&n).Error
	return float64(n), err
}

func (s *BadgeService) countRemixes(userID string) (float64, error) {
	var n int64
	err := s.db.Model(&models.Remix{}).Where("author_id = ?", userID).Count(&n).Error
	return float64(n), err
}

func (s *BadgeService) countHighQualityVersions(userID string) (float64, error) {
	var n int64
	err := s.db.Model(&models.QualityScore{}).
		Joins("JOIN prompt_versions ON prompt_versions.id = quality_scores.version_id").
		Joins("JOIN prompts ON prompts.id = prompt_versions.prompt_id").
		Where("prompts.author_id = ? AND quality_scores.composite >= ?", userID, highQualityCutoff).
		Count(&n).Error
	return float64(n), err
}

func (s *BadgeService) sumTotalUses(userID string) (float64, error) {
	row := struct {
		Total *int64
	}{}
	err := s.db.Model(&models.Prompt{}).
		Select("SUM(total_uses) as total").
		Where("author_id = ?", userID).
		Scan(&row).Error
	if err != nil || row.Total == nil {
		return 0, err
	}
	return float64(*row.Total), nil
}

func (s *BadgeService) countUpvotesReceived(userID string) (float64, error) {
	var n int64
	err := s.db.Model(&models.Vote{}).
		Joins("JOIN prompts ON prompts.id = votes.votable_id").
		Where("votes.votable_type = 'prompt' AND votes.value = ? AND prompts.author_id = ?", models.VoteUp, userID).
		Count(&n).Error
	return float64(n), err
}

func (s *BadgeService) countFollowers(userID string) (float64, error) {
	var n int64
	err := s.db.Model(&models.UserFollow{}).Where("followed_id = ?", userID).Count(&n).Error
	return float64(n), err
}

func (s *BadgeService) currentKarmaScore(userID string) (float64, error) {
	var user models.User
	if err := s.db.Select("karma_score").First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.KarmaScore, nil
}

// SeedBadges upserts the fixed badge catalogue, keyed on the unique name.
// Safe to call on every deploy; existing rows are left untouched so the
// thresholds badge copy references stay stable.
func (s *BadgeService) SeedBadges() error {
	badges := []models.Badge{
		{Name: "First Prompt", Description: "Published your first prompt.", Icon: "sparkles", Tier: models.TierBronze,
			CriteriaType: models.CriteriaPromptCount, CriteriaOperator: ">=", CriteriaValue: 1},
		{Name: "Prolific Author", Description: "Published 10 prompts.", Icon: "pen-tool", Tier: models.TierSilver,
			CriteriaType: models.CriteriaPromptCount, CriteriaOperator: ">=", CriteriaValue: 10},
		{Name: "Prompt Machine", Description: "Published 50 prompts. The library grows.", Icon: "library", Tier: models.TierGold,
			CriteriaType: models.CriteriaPromptCount, CriteriaOperator: ">=", CriteriaValue: 50},
		{Name: "Remix Rookie", Description: "Forked your first remix.", Icon: "git-fork", Tier: models.TierBronze,
			CriteriaType: models.CriteriaRemixCount, CriteriaOperator: ">=", CriteriaValue: 1},
		{Name: "Remix Artist", Description: "Authored 10 remixes.", Icon: "shuffle", Tier: models.TierSilver,
			CriteriaType: models.CriteriaRemixCount, CriteriaOperator: ">=", CriteriaValue: 10},
		{Name: "Gold Standard", Description: "A prompt version scored 85+ on PQAS.", Icon: "award", Tier: models.TierGold,
			CriteriaType: models.CriteriaHighQualityCount, CriteriaOperator: ">=", CriteriaValue: 1},
		{Name: "Quality Streak", Description: "Five versions scored 85+ on PQAS.", Icon: "flame", Tier: models.TierGold,
			CriteriaType: models.CriteriaHighQualityCount, CriteriaOperator: ">=", CriteriaValue: 5},
		{Name: "First Upvote", Description: "Received your first upvote.", Icon: "thumbs-up", Tier: models.TierBronze,
			CriteriaType: models.CriteriaUpvotesReceived, CriteriaOperator: ">=", CriteriaValue: 1},
		{Name: "Crowd Favorite", Description: "Received 50 upvotes across your prompts.", Icon: "heart", Tier: models.TierSilver,
			CriteriaType: models.CriteriaUpvotesReceived, CriteriaOperator: ">=", CriteriaValue: 50},
		{Name: "Widely Used", Description: "Your prompts were used 1000 times.", Icon: "trending-up", Tier: models.TierGold,
			CriteriaType: models.CriteriaTotalUses, CriteriaOperator: ">=", CriteriaValue: 1000},
		{Name: "Rising Star", Description: "Gained 10 followers.", Icon: "star", Tier: models.TierBronze,
			CriteriaType: models.CriteriaFollowerCount, CriteriaOperator: ">=", CriteriaValue: 10},
		{Name: "Influencer", Description: "Gained 100 followers.", Icon: "users", Tier: models.TierGold,
			CriteriaType: models.CriteriaFollowerCount, CriteriaOperator: ">=", CriteriaValue: 100},
		{Name: "Karma Adept", Description: "Reached a karma score of 50.", Icon: "zap", Tier: models.TierSilver,
			CriteriaType: models.CriteriaKarmaScore, CriteriaOperator: ">=", CriteriaValue: 50},
		{Name: "Karma Legend", Description: "Reached a karma score of 90.", Icon: "crown", Tier: models.TierGold,
			CriteriaType: models.CriteriaKarmaScore, CriteriaOperator: ">=", CriteriaValue: 90},
	}

	for _, badge := range badges {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&badge).Error
		if err != nil {
			return err
		}
	}
	return nil
}
