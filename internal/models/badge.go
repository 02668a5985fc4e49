package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeTier string

const (
	TierBronze BadgeTier = "BRONZE"
	TierSilver BadgeTier = "SILVER"
	TierGold   BadgeTier = "GOLD"
)

// CriteriaType names a measurable user aggregate. The set is closed; the
// badge engine treats anything else as never satisfied.
type CriteriaType string

const (
	CriteriaPromptCount CriteriaType = "prompt_count"
	CriteriaRemixCount  CriteriaType = "remix_count"
	// Count of the user's versions scoring composite >= 85.
	CriteriaHighQualityCount CriteriaType = "high_quality_count"
	CriteriaTotalUses        CriteriaType = "total_uses"
	CriteriaUpvotesReceived  CriteriaType = "upvotes_received"
	CriteriaFollowerCount    CriteriaType = "follower_count"
	CriteriaKarmaScore       CriteriaType = "karma_score"
)

type Badge struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"` // Lucide icon name
	Tier        BadgeTier `gorm:"type:text" json:"tier"`

	CriteriaType     CriteriaType `gorm:"type:text" json:"criteriaType"`
	CriteriaOperator string       `json:"criteriaOperator"` // >=, >, =, ==, <=, <
	CriteriaValue    float64      `json:"criteriaValue"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

type UserBadge struct {
	UserID     string    `gorm:"primaryKey;type:text" json:"userId"`
	BadgeID    string    `gorm:"primaryKey;type:text" json:"badgeId"`
	UnlockedAt time.Time `json:"unlockedAt"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}
