package services

import (
	"encoding/json"
	"math"
	"time"

	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"gorm.io/gorm"
)

// Karma weights. The four sub-scores are each bounded to [0,100] before
// weighting; the composite is rounded to one decimal.
const (
	weightAvgPQAS      = 0.40
	weightRemixSuccess = 0.25
	weightEngagement   = 0.20
	weightReferrals    = 0.15

	// A remix counts as successful when its result version scores
	// strictly above this composite.
	remixSuccessCutoff = 70

	// Points per qualifying referral, capped at 100 total. A referral
	// qualifies once converted and the referred user authored 3+ prompts.
	referralPoints        = 10
	referralMinPrompts    = 3
	referralPointsCeiling = 100
)

// KarmaBreakdown is one user's reputation computation. The persisted
// projection lives on the user row (karma_score + karma_metrics JSON).
type KarmaBreakdown struct {
	AvgPQAS             float64 `json:"avgPqas"`
	RemixSuccessRate    float64 `json:"remixSuccessRate"`
	EngagementScore     float64 `json:"engagementScore"`
	ReferralConversions float64 `json:"referralConversions"`
	TotalScore          float64 `json:"totalScore"`
	CalculatedAt        string  `json:"calculatedAt"`
}

// KarmaInputs are the pre-fetched aggregates BuildBreakdown assembles a
// breakdown from; they let the weighting be tested without a database.
type KarmaInputs struct {
	AvgPQAS             float64
	RemixSuccessRate    float64
	Upvotes             int64
	TotalUses           int64
	QualifyingReferrals int64
}

// BuildBreakdown is the pure half of the karma calculator: weighting and
// rounding over already-aggregated numbers.
func BuildBreakdown(in KarmaInputs) KarmaBreakdown {
	engagement := math.Min(100, float64(in.Upvotes)*0.5+float64(in.TotalUses)*0.1)
	referrals := math.Min(referralPointsCeiling, float64(in.QualifyingReferrals)*referralPoints)

	total := in.AvgPQAS*weightAvgPQAS +
		in.RemixSuccessRate*weightRemixSuccess +
		engagement*weightEngagement +
		referrals*weightReferrals

	return KarmaBreakdown{
		AvgPQAS:             in.AvgPQAS,
		RemixSuccessRate:    in.RemixSuccessRate,
		EngagementScore:     engagement,
		ReferralConversions: referrals,
		TotalScore:          math.Round(total*10) / 10,
		CalculatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

// KarmaService aggregates a user's prompts, remixes, votes, and referrals
// into the weighted karma score and persists it on the user row.
type KarmaService struct {
	db *gorm.DB
}

func NewKarmaService(db *gorm.DB) *KarmaService {
	return &KarmaService{db: db}
}

// CalculateKarma computes the breakdown without writing anything.
// A user with no activity yields a well-defined zero total, not an error.
func (s *KarmaService) CalculateKarma(userID string) (KarmaBreakdown, error) {
	var in KarmaInputs

	// 1. Mean composite over the user's scored versions.
	row := struct {
		Avg *float64
	}{}
	err := s.db.Model(&models.QualityScore{}).
		Select("AVG(quality_scores.composite) as avg").
		Joins("JOIN prompt_versions ON prompt_versions.id = quality_scores.version_id").
		Joins("JOIN prompts ON prompts.id = prompt_versions.prompt_id").
		Where("prompts.author_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return KarmaBreakdown{}, err
	}
	if row.Avg != nil {
		in.AvgPQAS = math.Min(100, *row.Avg)
	}

	// 2. Share of the user's remixes whose result version beat the cutoff.
	var remixTotal, remixHits int64
	if err := s.db.Model(&models.Remix{}).Where("author_id = ?", userID).Count(&remixTotal).Error; err != nil {
		return KarmaBreakdown{}, err
	}
	if remixTotal > 0 {
		err = s.db.Model(&models.Remix{}).
			Joins("JOIN quality_scores ON quality_scores.version_id = remixes.result_version_id").
			Where("remixes.author_id = ? AND quality_scores.composite > ?", userID, remixSuccessCutoff).
			Count(&remixHits).Error
		if err != nil {
			return KarmaBreakdown{}, err
		}
		in.RemixSuccessRate = float64(remixHits) / float64(remixTotal) * 100
	}

	// 3. Upvotes received + total uses across the user's prompts.
	err = s.db.Model(&models.Vote{}).
		Joins("JOIN prompts ON prompts.id = votes.votable_id").
		Where("votes.votable_type = 'prompt' AND votes.value = ? AND prompts.author_id = ?", models.VoteUp, userID).
		Count(&in.Upvotes).Error
	if err != nil {
		return KarmaBreakdown{}, err
	}
	uses := struct {
		Total *int64
	}{}
	err = s.db.Model(&models.Prompt{}).
		Select("SUM(total_uses) as total").
		Where("author_id = ?", userID).
		Scan(&uses).Error
	if err != nil {
		return KarmaBreakdown{}, err
	}
	if uses.Total != nil {
		in.TotalUses = *uses.Total
	}

	// 4. Converted referrals whose referred user authored enough prompts.
	err = s.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND converted = ?", userID, true).
		Where("(SELECT COUNT(*) FROM prompts WHERE prompts.author_id = referrals.referred_id AND prompts.deleted_at IS NULL) >= ?", referralMinPrompts).
		Count(&in.QualifyingReferrals).Error
	if err != nil {
		return KarmaBreakdown{}, err
	}

	return BuildBreakdown(in), nil
}

// UpdateUserKarma recalculates and persists the user's karma score and
// metrics. Concurrent updates are last-write-wins; no locking.
func (s *KarmaService) UpdateUserKarma(userID string) error {
	breakdown, err := s.CalculateKarma(userID)
	if err != nil {
		return err
	}

	metrics, err := json.Marshal(breakdown)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"karma_score":      breakdown.TotalScore,
		"karma_metrics":    string(metrics),
		"karma_updated_at": &now,
	}).Error
}

// RecalculateAll recomputes karma for every user. One user's failure is
// logged and skipped; it never aborts the batch. Returns the number of
// users successfully processed.
func (s *KarmaService) RecalculateAll() (int, error) {
	var userIDs []string
	if err := s.db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range userIDs {
		if err := s.UpdateUserKarma(id); err != nil {
			logger.Error().Err(err).Str("userId", id).Msg("Karma recalculation failed for user, continuing")
			continue
		}
		processed++
	}

	logger.Info().Int("processed", processed).Int("total", len(userIDs)).Msg("Karma batch recalculation complete")
	return processed, nil
}
