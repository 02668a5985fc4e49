package services

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService persists notification records. It is a best-effort
// side effect: a failed insert is logged and swallowed so it never blocks
// the action that produced it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Notify(n models.Notification) {
	if err := s.db.Create(&n).Error; err != nil {
		logger.Error().Err(err).Str("userId", n.UserID).Str("type", string(n.Type)).Msg("Failed to create notification")
	}
}
