package services

import (
	"testing"

	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBadgeService(db *gorm.DB) *BadgeService {
	return NewBadgeService(db, NewNotificationService(db))
}

func badgeNames(badges []models.Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}

func TestCriteriaSatisfied(t *testing.T) {
	cases := []struct {
		metric   float64
		operator string
		target   float64
		want     bool
	}{
		{10, ">=", 10, true},
		{9, ">=", 10, false},
		{11, ">", 10, true},
		{10, ">", 10, false},
		{10, "=", 10, true},
		{10, "==", 10, true},
		{9, "==", 10, false},
		{10, "<=", 10, true},
		{11, "<=", 10, false},
		{9, "<", 10, true},
		{10, "<", 10, false},
		{100, "!=", 10, false}, // unsupported operator is never satisfied
		{100, "", 10, false},
	}

	for _, c := range cases {
		got := criteriaSatisfied(c.metric, c.operator, c.target)
		assert.Equalf(t, c.want, got, "%v %s %v", c.metric, c.operator, c.target)
	}
}

func TestCheckAndAwardBadgesFirstPrompt(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	author := createTestUser(t, db, "author")
	prompt := createTestPrompt(t, db, author.ID)
	addScoredVersion(t, db, prompt.ID, 1, 70)

	awarded, err := svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)

	names := badgeNames(awarded)
	assert.Contains(t, names, "First Prompt")
	assert.NotContains(t, names, "Prolific Author")
	assert.NotContains(t, names, "Gold Standard")
}

func TestCheckAndAwardBadgesIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	author := createTestUser(t, db, "author")
	createTestPrompt(t, db, author.ID)

	first, err := svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", author.ID).Count(&count).Error)
	assert.Equal(t, int64(len(first)), count)
}

func TestCheckAndAwardBadgesHighQuality(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	author := createTestUser(t, db, "author")
	prompt := createTestPrompt(t, db, author.ID)

	// 84 sits just under the cutoff; no high-quality badge yet.
	addScoredVersion(t, db, prompt.ID, 1, 84)
	awarded, err := svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)
	assert.NotContains(t, badgeNames(awarded), "Gold Standard")

	// 85 counts.
	addScoredVersion(t, db, prompt.ID, 2, 85)
	awarded, err = svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)
	assert.Contains(t, badgeNames(awarded), "Gold Standard")
	assert.NotContains(t, badgeNames(awarded), "Quality Streak")
}

func TestCheckAndAwardBadgesKarmaThresholds(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	user := createTestUser(t, db, "adept")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("karma_score", 55.0).Error)

	awarded, err := svc.CheckAndAwardBadges(user.ID)
	require.NoError(t, err)

	names := badgeNames(awarded)
	assert.Contains(t, names, "Karma Adept")
	assert.NotContains(t, names, "Karma Legend")
}

func TestCheckAndAwardBadgesFollowers(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	star := createTestUser(t, db, "star")
	for i := 0; i < 10; i++ {
		fan := createTestUser(t, db, "fan-"+string(rune('a'+i)))
		require.NoError(t, db.Create(&models.UserFollow{
			FollowerID: fan.ID,
			FollowedID: star.ID,
		}).Error)
	}

	awarded, err := svc.CheckAndAwardBadges(star.ID)
	require.NoError(t, err)
	assert.Contains(t, badgeNames(awarded), "Rising Star")
	assert.NotContains(t, badgeNames(awarded), "Influencer")
}

func TestCheckAndAwardBadgesUnknownCriteriaType(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)

	require.NoError(t, db.Create(&models.Badge{
		Name:             "Mystery",
		Tier:             models.TierBronze,
		CriteriaType:     models.CriteriaType("moon_phase"),
		CriteriaOperator: ">=",
		CriteriaValue:    0,
	}).Error)

	user := createTestUser(t, db, "user")
	awarded, err := svc.CheckAndAwardBadges(user.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckAndAwardBadgesSendsNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)
	require.NoError(t, svc.SeedBadges())

	author := createTestUser(t, db, "author")
	createTestPrompt(t, db, author.ID)

	awarded, err := svc.CheckAndAwardBadges(author.ID)
	require.NoError(t, err)
	require.NotEmpty(t, awarded)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", author.ID, models.NotificationTypeBadgeUnlocked).Find(&notifications).Error)
	assert.Len(t, notifications, len(awarded))
	assert.Contains(t, notifications[0].Message, "First Prompt")
}

func TestSeedBadgesIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newBadgeService(db)

	require.NoError(t, svc.SeedBadges())
	var before int64
	require.NoError(t, db.Model(&models.Badge{}).Count(&before).Error)
	require.NotZero(t, before)

	require.NoError(t, svc.SeedBadges())
	var after int64
	require.NoError(t, db.Model(&models.Badge{}).Count(&after).Error)
	assert.Equal(t, before, after)
}
