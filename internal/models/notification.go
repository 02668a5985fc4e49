package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeBadgeUnlocked NotificationType = "badge_unlocked"
	NotificationTypeComment       NotificationType = "comment"
	NotificationTypeFollow        NotificationType = "follow"
	NotificationTypeFeature       NotificationType = "feature"
	NotificationTypeSystem        NotificationType = "system"
)

type Notification struct {
	ID        string           `gorm:"primaryKey;type:text" json:"id"`
	UserID    string           `gorm:"index;type:text;not null" json:"userId"` // Recipient
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string           `json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Link      string           `json:"link"`
	IsRead    bool             `gorm:"default:false" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return
}
