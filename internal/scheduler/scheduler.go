// Package scheduler owns the background jobs that run outside the request
// lifecycle, so batch failures are observable instead of vanishing inside
// a fire-and-forget goroutine.
package scheduler

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/services"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron        *cron.Cron
	karma       *services.KarmaService
	leaderboard *services.LeaderboardService
}

func New(karma *services.KarmaService, leaderboard *services.LeaderboardService) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		karma:       karma,
		leaderboard: leaderboard,
	}
}

// Start registers the nightly karma batch and begins the cron loop.
func (s *Scheduler) Start(karmaSpec string) error {
	_, err := s.cron.AddFunc(karmaSpec, s.runKarmaBatch)
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.Info().Str("spec", karmaSpec).Msg("Karma batch scheduled")
	return nil
}

func (s *Scheduler) runKarmaBatch() {
	logger.Info().Msg("Nightly karma batch starting")
	processed, err := s.karma.RecalculateAll()
	if err != nil {
		logger.Error().Err(err).Msg("Nightly karma batch failed")
		return
	}
	s.leaderboard.Invalidate()
	logger.Info().Int("processed", processed).Msg("Nightly karma batch finished")
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
