package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteValue string

const (
	VoteUp   VoteValue = "up"
	VoteDown VoteValue = "down"
)

// Vote is one user's up/down vote on a votable entity. Today only prompts
// are votable; the type column keeps the table open for comments later.
type Vote struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID      string    `gorm:"uniqueIndex:idx_user_votable" json:"userId"`
	VotableType string    `gorm:"uniqueIndex:idx_user_votable;default:'prompt'" json:"votableType"`
	VotableID   string    `gorm:"uniqueIndex:idx_user_votable" json:"votableId"`
	Value       VoteValue `gorm:"type:text;not null" json:"value"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

// UserFollow represents a follower relationship (follower follows followed).
type UserFollow struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FollowerID string `gorm:"uniqueIndex:idx_follower_followed" json:"followerId"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"follower"`

	FollowedID string `gorm:"uniqueIndex:idx_follower_followed" json:"followedId"`
	Followed   User   `gorm:"foreignKey:FollowedID" json:"followed"`
}

func (uf *UserFollow) BeforeCreate(tx *gorm.DB) (err error) {
	if uf.ID == "" {
		uf.ID = uuid.New().String()
	}
	return
}

// Referral links a referrer to the user who signed up with their code.
// Converted is flipped when the referred user publishes their first prompt;
// karma additionally requires the referred user to have authored 3+ prompts
// before the referral pays out.
type Referral struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ReferrerID string `gorm:"index" json:"referrerId"`
	ReferredID string `gorm:"uniqueIndex" json:"referredId"`
	Code       string `json:"code"`
	Converted  bool   `gorm:"default:false" json:"converted"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
