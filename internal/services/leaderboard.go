package services

import (
	"sync"
	"time"

	"github.com/Corvynix/PromptLibrary-sub000/internal/database"
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"gorm.io/gorm"
)

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Avatar      string  `json:"avatar"`
	KarmaScore  float64 `json:"karmaScore"`
	PromptCount int64   `json:"promptCount"`
	BadgeCount  int64   `json:"badgeCount"`
}

type cachedLeaderboard struct {
	Entries   []LeaderboardEntry
	ExpiresAt time.Time
}

// LeaderboardService ranks users by karma. Results are cached in-process
// for a short TTL and snapshotted to redis so other instances can serve
// the same ranking without recomputing.
type LeaderboardService struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache *cachedLeaderboard
	ttl   time.Duration
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db, ttl: 30 * time.Second}
}

const leaderboardCacheKey = "leaderboard:karma"

// Invalidate clears both cache layers (call after a karma batch run).
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
	database.CacheInvalidate(leaderboardCacheKey)
}

// Top returns the highest-karma users, ranked.
func (s *LeaderboardService) Top(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	s.mu.RLock()
	if s.cache != nil && time.Now().Before(s.cache.ExpiresAt) && len(s.cache.Entries) >= limit {
		entries := s.cache.Entries[:limit]
		s.mu.RUnlock()
		return entries, nil
	}
	s.mu.RUnlock()

	// Second chance: another instance may have a fresh redis snapshot.
	var snapshot []LeaderboardEntry
	if err := database.CacheGet(leaderboardCacheKey, &snapshot); err == nil && len(snapshot) >= limit {
		s.store(snapshot)
		return snapshot[:limit], nil
	}

	var users []models.User
	if err := s.db.
		Where("karma_score > 0").
		Order("karma_score desc").
		Limit(100).
		Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entry := LeaderboardEntry{
			Rank:       i + 1,
			UserID:     u.ID,
			Username:   u.Username,
			Name:       u.Name,
			Avatar:     u.Image,
			KarmaScore: u.KarmaScore,
		}
		s.db.Model(&models.Prompt{}).Where("author_id = ?", u.ID).Count(&entry.PromptCount)
		s.db.Model(&models.UserBadge{}).Where("user_id = ?", u.ID).Count(&entry.BadgeCount)
		entries = append(entries, entry)
	}

	s.store(entries)
	database.CacheSet(leaderboardCacheKey, entries, s.ttl)

	if limit > len(entries) {
		limit = len(entries)
	}
	return entries[:limit], nil
}

func (s *LeaderboardService) store(entries []LeaderboardEntry) {
	s.mu.Lock()
	s.cache = &cachedLeaderboard{Entries: entries, ExpiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}
