package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `json:"name"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`

	Role Role `gorm:"type:text;default:'USER'" json:"role"`

	// Reputation. KarmaScore is the weighted composite written by the karma
	// calculator; KarmaMetrics is the JSON projection of the last breakdown.
	KarmaScore     float64    `gorm:"default:0;index" json:"karmaScore"`
	KarmaMetrics   string     `gorm:"type:text" json:"karmaMetrics"`
	KarmaUpdatedAt *time.Time `json:"karmaUpdatedAt"`

	// Short code shared with friends; registrations carrying it create a
	// Referral row pointing back at this user.
	ReferralCode string `gorm:"uniqueIndex" json:"referralCode"`

	Password string `json:"-"`

	Count UserCount `gorm:"-" json:"_count"`
}

type UserCount struct {
	Prompts   int64 `json:"prompts"`
	Followers int64 `json:"followers"`
	Badges    int64 `json:"badges"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.ReferralCode == "" {
		u.ReferralCode = uuid.New().String()[:8]
	}
	return
}
