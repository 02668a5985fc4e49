package services

import (
	"encoding/json"
	"testing"

	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBreakdownWeights(t *testing.T) {
	breakdown := BuildBreakdown(KarmaInputs{
		AvgPQAS:             80,
		RemixSuccessRate:    100,
		Upvotes:             40,
		TotalUses:           100,
		QualifyingReferrals: 2,
	})

	// engagement = min(100, 40*0.5 + 100*0.1) = 30; referrals = 2*10 = 20
	assert.InDelta(t, 30, breakdown.EngagementScore, 0.001)
	assert.InDelta(t, 20, breakdown.ReferralConversions, 0.001)

	// 80*0.40 + 100*0.25 + 30*0.20 + 20*0.15 = 32 + 25 + 6 + 3
	assert.InDelta(t, 66.0, breakdown.TotalScore, 0.001)
	assert.NotEmpty(t, breakdown.CalculatedAt)
}

func TestBuildBreakdownZeroActivity(t *testing.T) {
	breakdown := BuildBreakdown(KarmaInputs{})
	assert.Zero(t, breakdown.TotalScore)
	assert.Zero(t, breakdown.EngagementScore)
	assert.Zero(t, breakdown.ReferralConversions)
}

func TestBuildBreakdownEngagementCap(t *testing.T) {
	breakdown := BuildBreakdown(KarmaInputs{Upvotes: 500, TotalUses: 10000})
	assert.InDelta(t, 100, breakdown.EngagementScore, 0.001)

	// Only the engagement component contributes: 100 * 0.20
	assert.InDelta(t, 20.0, breakdown.TotalScore, 0.001)
}

func TestBuildBreakdownReferralCap(t *testing.T) {
	breakdown := BuildBreakdown(KarmaInputs{QualifyingReferrals: 25})
	assert.InDelta(t, 100, breakdown.ReferralConversions, 0.001)
	assert.InDelta(t, 15.0, breakdown.TotalScore, 0.001)
}

func TestBuildBreakdownRoundsToOneDecimal(t *testing.T) {
	// avgPQAS 33.33 -> 13.332, rounds to 13.3
	breakdown := BuildBreakdown(KarmaInputs{AvgPQAS: 33.33})
	assert.InDelta(t, 13.3, breakdown.TotalScore, 0.0001)
}

func TestCalculateKarmaNoActivity(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "lurker")

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(user.ID)

	require.NoError(t, err)
	assert.Zero(t, breakdown.TotalScore)
	assert.Zero(t, breakdown.AvgPQAS)
	assert.Zero(t, breakdown.RemixSuccessRate)
}

func TestCalculateKarmaAvgPQAS(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	prompt := createTestPrompt(t, db, author.ID)
	addScoredVersion(t, db, prompt.ID, 1, 80)
	addScoredVersion(t, db, prompt.ID, 2, 90)

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(author.ID)

	require.NoError(t, err)
	assert.InDelta(t, 85, breakdown.AvgPQAS, 0.001)
	// 85 * 0.40, everything else zero
	assert.InDelta(t, 34.0, breakdown.TotalScore, 0.001)
}

func TestCalculateKarmaIgnoresOtherAuthors(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")

	otherPrompt := createTestPrompt(t, db, other.ID)
	addScoredVersion(t, db, otherPrompt.ID, 1, 100)

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(author.ID)

	require.NoError(t, err)
	assert.Zero(t, breakdown.AvgPQAS)
}

func TestCalculateKarmaRemixSuccessRate(t *testing.T) {
	db := setupTestDB(t)
	remixer := createTestUser(t, db, "remixer")
	source := createTestUser(t, db, "source")

	sourcePrompt := createTestPrompt(t, db, source.ID)
	sourceVersion := addScoredVersion(t, db, sourcePrompt.ID, 1, 75)

	// Two remixes: one result beats the cutoff (90 > 70), one lands exactly
	// on it (70 is not a success: strictly greater is required).
	winPrompt := createTestPrompt(t, db, remixer.ID)
	winVersion := addScoredVersion(t, db, winPrompt.ID, 1, 90)
	require.NoError(t, db.Create(&models.Remix{
		AuthorID:        remixer.ID,
		PromptID:        winPrompt.ID,
		SourceVersionID: sourceVersion.ID,
		ResultVersionID: winVersion.ID,
	}).Error)

	flatPrompt := createTestPrompt(t, db, remixer.ID)
	flatVersion := addScoredVersion(t, db, flatPrompt.ID, 1, 70)
	require.NoError(t, db.Create(&models.Remix{
		AuthorID:        remixer.ID,
		PromptID:        flatPrompt.ID,
		SourceVersionID: sourceVersion.ID,
		ResultVersionID: flatVersion.ID,
	}).Error)

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(remixer.ID)

	require.NoError(t, err)
	assert.InDelta(t, 50, breakdown.RemixSuccessRate, 0.001)
}

func TestCalculateKarmaEngagement(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	fanA := createTestUser(t, db, "fan-a")
	fanB := createTestUser(t, db, "fan-b")

	prompt := createTestPrompt(t, db, author.ID)
	require.NoError(t, db.Model(&prompt).Update("total_uses", 100).Error)
	addUpvote(t, db, fanA.ID, prompt.ID)
	addUpvote(t, db, fanB.ID, prompt.ID)

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(author.ID)

	require.NoError(t, err)
	// 2 upvotes * 0.5 + 100 uses * 0.1 = 11
	assert.InDelta(t, 11, breakdown.EngagementScore, 0.001)
}

func TestCalculateKarmaReferralQualification(t *testing.T) {
	db := setupTestDB(t)
	referrer := createTestUser(t, db, "referrer")
	referred := createTestUser(t, db, "referred")

	require.NoError(t, db.Create(&models.Referral{
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
		Code:       referrer.ReferralCode,
		Converted:  true,
	}).Error)

	svc := NewKarmaService(db)

	// Converted but the referred user only has 2 prompts: no payout yet.
	createTestPrompt(t, db, referred.ID)
	createTestPrompt(t, db, referred.ID)
	breakdown, err := svc.CalculateKarma(referrer.ID)
	require.NoError(t, err)
	assert.Zero(t, breakdown.ReferralConversions)

	// Third prompt crosses the qualification threshold.
	createTestPrompt(t, db, referred.ID)
	breakdown, err = svc.CalculateKarma(referrer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10, breakdown.ReferralConversions, 0.001)
}

func TestCalculateKarmaUnconvertedReferralPaysNothing(t *testing.T) {
	db := setupTestDB(t)
	referrer := createTestUser(t, db, "referrer")
	referred := createTestUser(t, db, "referred")

	require.NoError(t, db.Create(&models.Referral{
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
		Code:       referrer.ReferralCode,
	}).Error)
	for i := 0; i < 3; i++ {
		createTestPrompt(t, db, referred.ID)
	}

	svc := NewKarmaService(db)
	breakdown, err := svc.CalculateKarma(referrer.ID)
	require.NoError(t, err)
	assert.Zero(t, breakdown.ReferralConversions)
}

func TestUpdateUserKarmaPersists(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	prompt := createTestPrompt(t, db, author.ID)
	addScoredVersion(t, db, prompt.ID, 1, 90)

	svc := NewKarmaService(db)
	require.NoError(t, svc.UpdateUserKarma(author.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", author.ID).Error)

	assert.InDelta(t, 36.0, stored.KarmaScore, 0.001)
	assert.NotNil(t, stored.KarmaUpdatedAt)

	var metrics KarmaBreakdown
	require.NoError(t, json.Unmarshal([]byte(stored.KarmaMetrics), &metrics))
	assert.InDelta(t, 90, metrics.AvgPQAS, 0.001)
	assert.Equal(t, stored.KarmaScore, metrics.TotalScore)
}

func TestRecalculateAllProcessesEveryUser(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	prompt := createTestPrompt(t, db, alice.ID)
	addScoredVersion(t, db, prompt.ID, 1, 80)

	svc := NewKarmaService(db)
	processed, err := svc.RecalculateAll()

	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", alice.ID).Error)
	assert.InDelta(t, 32.0, stored.KarmaScore, 0.001)

	stored = models.User{}
	require.NoError(t, db.First(&stored, "id = ?", bob.ID).Error)
	assert.Zero(t, stored.KarmaScore)
	assert.NotNil(t, stored.KarmaUpdatedAt)
}
